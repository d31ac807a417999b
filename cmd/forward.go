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
	forwardPort     int
	forwardRootCert string
)

var forwardCmd = &cobra.Command{
	Use:     "forward",
	Short:   "Run in forward proxy mode, intercepting outbound client connections",
	Example: "# tlsproxy --compress --encrypt forward --port 8080 --root-cert certs/ca_cert.pem",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := proxy.ForwardConfig{
			ListenAddr: fmt.Sprintf("0.0.0.0:%d", forwardPort),
			Compress:   compress,
		}

		if encrypt {
			roots, err := tlsmaterial.LoadRootStore(forwardRootCert)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to load root store: %v\n", err)
				os.Exit(1)
			}
			cfg.TLSConfig = tlsmaterial.ClientConfig(roots)
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

		if err := proxy.RunForward(ctx, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "forward proxy failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	forwardCmd.Flags().IntVarP(&forwardPort, "port", "p", 8080, "Port receiving intercepted client connections")
	forwardCmd.Flags().StringVar(&forwardRootCert, "root-cert", "certs/ca_cert.pem", "Path to the PEM root CA bundle trusted for the upstream TLS dial")
	rootCmd.AddCommand(forwardCmd)
}
