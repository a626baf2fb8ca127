/*
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package main

import (
	"github.com/netkit-sh/netkit/pkg/awsprovider"
	"github.com/netkit-sh/netkit/pkg/controller/network"
	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/util/runtime"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "default",
		Short: "Show the account's default VPC as an adopted network topology.",
		Long:  ``,
		Run:   Default,
	})
}

func Default(cmd *cobra.Command, args []string) {
	defaultNetwork := network.NewDefaultNetwork(awsprovider.EC2Client(awsprovider.NewSession()))
	net, err := defaultNetwork.Get(cmd.Context())
	runtime.Must(err)
	printTopology(cmd, net)
}
