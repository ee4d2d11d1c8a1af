// Package main 是应用程序的入口。
package main

import (
	"os"

	"github.com/spf13/cobra"

	"study-assistant-go/internal/config"
	"study-assistant-go/pkg/log"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "study-assistant",
	Short: "AI study assistant API server",
	Long:  `Upload study material, generate multiple-choice questions over SSE, grade quiz sessions and chat with a tutor grounded on the document.`,
	// 默认执行 serve
	RunE: runServe,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Init(configPath)
		log.Init(config.Conf.Log.Level, config.Conf.Log.Format, config.Conf.Log.OutputPath)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./configs/config.yaml", "Path to the YAML config file")
}

func main() {
	defer log.Sync()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
