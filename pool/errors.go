package pool

import "errors"

// ErrCommitValidatorNotActive is raised when a peer-supplied commit names a
// validator that is not a member of the active set at its height. Surfaced
// to the caller so the transport layer can score the offending peer.
var ErrCommitValidatorNotActive = errors.New("pool: validator not active at commit height")

// ErrCommitSignatureInvalid is raised when a commit's BLS signature fails
// verification. Surfaced for peer scoring.
var ErrCommitSignatureInvalid = errors.New("pool: certificate signature invalid")

// ErrJobAborted is returned by RunJobOnce when the tick could not compute a
// removal height and therefore left pool state untouched.
var ErrJobAborted = errors.New("pool: job tick aborted, state unchanged")
