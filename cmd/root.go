// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cmd implements the tlsproxy command line: the forward and
// reverse subcommands, and the flags shared by both.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/klinvill/tlsproxy/common"
	"github.com/klinvill/tlsproxy/logger"
)

var (
	compress bool
	encrypt  bool

	logLevel  string
	logFile   string
	adminAddr string
)

func buildVersionString() string {
	info := common.GetBuildInfo()
	if info.GitHash == "" {
		return common.Version
	}
	return fmt.Sprintf("%s (commit %s, built %s)", common.Version, info.GitHash, info.Time)
}

var rootCmd = &cobra.Command{
	Use:     common.App,
	Version: buildVersionString(),
	Short:   "A pair of cooperating transparent TCP proxies",
	Long: "tlsproxy transports plaintext TCP traffic across an untrusted " +
		"network, optionally TLS-encrypting and optionally compressing " +
		"it with a custom framing that the peer proxy reverses.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		opt := logger.Options{Level: logLevel}
		if logFile == "" {
			opt.Stdout = true
		} else {
			opt.Filename = logFile
			opt.MaxSize = 100
			opt.MaxBackups = 10
			opt.MaxAge = 7
		}
		logger.SetOptions(opt)
	},
}

// Execute runs the root command, exiting the process with a non-zero
// status on any startup/config error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&compress, "compress", "c", false, "Compress traffic between the forward and reverse proxy")
	rootCmd.PersistentFlags().BoolVarP(&encrypt, "encrypt", "e", false, "TLS-encrypt traffic between the forward and reverse proxy")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file path; logs to stdout if unset")
	rootCmd.PersistentFlags().StringVar(&adminAddr, "admin-addr", "", "Address for the admin HTTP server (metrics, pprof); disabled if unset")
}
