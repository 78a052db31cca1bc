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
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func CatalogCommand() *cobra.Command {

	var flags buildFlags

	cmd := &cobra.Command{
		Use:     "catalog",
		Aliases: []string{"cat"},
		Short:   "List the capabilities of the catalog and their conditions",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := flags.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			doc, err := loadCatalog(cfg)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "KIND\tNAME\tWHEN\tREQUIRES\tDRIVER\n")
			for _, c := range doc.Capabilities {
				requires := strings.Join(c.Requires, ",")
				if len(c.RequiresAnyOf) > 0 {
					if requires != "" {
						requires += ","
					}
					requires += "(" + strings.Join(c.RequiresAnyOf, "|") + ")"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					c.Kind, c.Name, orDash(c.When), orDash(requires), orDash(c.DriverVersions))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d capabilities, %d facilities\n",
				doc.Component, len(doc.Capabilities), len(doc.Facilities))
			return err
		},
	}

	flags.register(cmd, false)
	return cmd
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
