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

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/klinvill/tlsproxy/internal/sigs"
	"github.com/klinvill/tlsproxy/logger"
	"github.com/klinvill/tlsproxy/proxy"
	"github.com/klinvill/tlsproxy/server"
	"github.com/klinvill/tlsproxy/tlsmaterial"
)

var (
	reversePort      int
	reverseCertChain string
	reverseKey       string
)

var reverseCmd = &cobra.Command{
	Use:     "reverse --cert-chain PATH --key PATH SERVERS...",
	Short:   "Run in reverse proxy mode, terminating connections in front of origin servers",
	Args:    cobra.MinimumNArgs(1),
	Example: "# tlsproxy --compress --encrypt reverse --port 9443 --cert-chain certs/server_cert.pem --key certs/server_key.pem 10.0.0.1:80 10.0.0.2:80",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := proxy.ReverseConfig{
			ListenAddr: fmt.Sprintf("0.0.0.0:%d", reversePort),
			Backends:   args,
			Compress:   compress,
		}

		if encrypt {
			cert, err := tlsmaterial.LoadIdentity(reverseCertChain, reverseKey)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to load server identity: %v\n", err)
				os.Exit(1)
			}
			cfg.TLSConfig = tlsmaterial.ServerConfig(cert)
		}

		if admin := server.New(server.Config{Address: adminAddr, Pprof: true}); admin != nil {
			go func() {
				if err := admin.ListenAndServe(); err != nil {
					logger.Warnf("admin server stopped: %v", err)
				}
			}()
		}

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			<-sigs.Terminate()
			cancel()
		}()

		if err := proxy.RunReverse(ctx, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "reverse proxy failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	reverseCmd.Flags().IntVarP(&reversePort, "port", "p", 9443, "Port receiving incoming connections")
	reverseCmd.Flags().StringVar(&reverseCertChain, "cert-chain", "", "Path to the PEM certificate chain presented to clients")
	reverseCmd.Flags().StringVar(&reverseKey, "key", "", "Path to the PEM PKCS#8 private key for --cert-chain")
	rootCmd.AddCommand(reverseCmd)
}
