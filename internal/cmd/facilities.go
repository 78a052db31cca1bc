// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"nativehints.apache.org/nativehints-go/internal/util/logger"
)

func FacilitiesCommand() *cobra.Command {

	var flags buildFlags

	cmd := &cobra.Command{
		Use:     "facilities",
		Aliases: []string{"fac"},
		Short:   "Detect the optional facilities of the build",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := flags.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			log := logger.NewLogger(cmd.ErrOrStderr(), cfg.Logging())
			doc, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			set, err := detectFacilities(log, cfg, doc)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "FACILITY\tPRESENT\tDESCRIPTION\n")
			declared := make(map[string]bool, len(doc.Facilities))
			for _, f := range doc.Facilities {
				declared[f.Name] = true
				fmt.Fprintf(w, "%s\t%t\t%s\n", f.Name, set.Has(f.Name), orDash(f.Description))
			}
			// names reported by a probe but unknown to the catalog
			for _, name := range set.Names() {
				if !declared[name] {
					fmt.Fprintf(w, "%s\t%t\t%s\n", name, true, "(not declared by the catalog)")
				}
			}
			return w.Flush()
		},
	}

	flags.register(cmd, false)
	return cmd
}
