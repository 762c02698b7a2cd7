package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dcz-bft/commitpool/config"
	"github.com/dcz-bft/commitpool/logger"
)

var (
	nodes, basePort, logLevel, nodeID                             int
	keyFile, committeeFile, parametersFile, storePath, listenAddr string
	logDir                                                        string
)

func main() {
	rootCmd := cobra.Command{
		Use:   "commitpoold",
		Short: "A standalone demo of the commit pool: gossip, pruning and aggregation without a BFT voting engine behind it.",
	}

	keysCmd := cobra.Command{
		Use:   "keys",
		Short: "Print a fresh BLS key pair to file",
		Run: func(cmd *cobra.Command, args []string) {
			if err := config.GenerateKeyFile(keyFile); err != nil {
				logger.Error.Println(err)
				panic(err)
			}
		},
	}
	keysCmd.Flags().StringVar(&keyFile, "path", "node-key.json", "The file where to print the new key pair")

	committeeCmd := cobra.Command{
		Use:   "committee",
		Short: "Print a local committee address book to file",
		Run: func(cmd *cobra.Command, args []string) {
			if err := config.GenerateSampleCommittee(committeeFile, nodes, basePort); err != nil {
				logger.Error.Println(err)
				panic(err)
			}
		},
	}
	committeeCmd.Flags().StringVar(&committeeFile, "path", "committee.json", "The file where to print the committee")
	committeeCmd.Flags().IntVar(&nodes, "nodes", 4, "The number of peers in the committee")
	committeeCmd.Flags().IntVar(&basePort, "base_port", 9000, "The first peer's listen port")

	parametersCmd := cobra.Command{
		Use:   "parameters",
		Short: "Print the default pool parameters to file",
		Run: func(cmd *cobra.Command, args []string) {
			if err := config.GenerateSampleParameters(parametersFile); err != nil {
				logger.Error.Println(err)
				panic(err)
			}
		},
	}
	parametersCmd.Flags().StringVar(&parametersFile, "path", "parameters.json", "The file where to print the parameters")

	runCmd := cobra.Command{
		Use:   "run",
		Short: "Runs a single demo node",
		Run: func(cmd *cobra.Command, args []string) {
			logger.SetLevel(logger.Level(logLevel))
			if logDir != "" {
				logger.RedirectToFiles(logDir, nodeID)
			}

			node, err := NewNode(keyFile, committeeFile, parametersFile, storePath, listenAddr, nodeID)
			if err != nil {
				logger.Error.Println(err)
				panic(err)
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			node.Run(ctx)
		},
	}
	runCmd.Flags().StringVar(&keyFile, "keys", "", "The file containing the node's key pair")
	runCmd.Flags().StringVar(&committeeFile, "committee", "", "The file containing committee information")
	runCmd.Flags().StringVar(&parametersFile, "parameters", "", "The file containing the pool parameters")
	runCmd.Flags().StringVar(&storePath, "store", "", "The path where to create the data store")
	runCmd.Flags().StringVar(&listenAddr, "listen", ":9000", "The address this node listens for gossip on")
	runCmd.Flags().IntVar(&logLevel, "log_level", int(logger.DeployLevel), "The level of log out")
	runCmd.Flags().IntVar(&nodeID, "node_id", 0, "The ID of this node")
	runCmd.Flags().StringVar(&logDir, "log_dir", "", "If set, write each log level to its own file under this directory instead of stdout")

	rootCmd.AddCommand(&keysCmd, &committeeCmd, &parametersCmd, &runCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.Error.Println(err)
		panic(err)
	}
}
