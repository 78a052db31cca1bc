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

package root

import (
	"github.com/spf13/cobra"

	"nativehints.apache.org/nativehints-go/internal/cmd"
)

func GetRootCommand() *cobra.Command {

	c := &cobra.Command{
		Use:           "nativehints",
		Short:         "Build-time capability registration",
		Long:          "nativehints decides which driver capabilities an ahead-of-time image needs and writes them as a manifest",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	c.AddCommand(cmd.VersionCommand())
	c.AddCommand(cmd.EmitCommand())
	c.AddCommand(cmd.CatalogCommand())
	c.AddCommand(cmd.FacilitiesCommand())

	return c
}
