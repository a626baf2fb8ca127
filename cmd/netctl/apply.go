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
	"github.com/aws/aws-sdk-go/aws"
	"github.com/netkit-sh/netkit/pkg/apis/v1alpha1"
	"github.com/netkit-sh/netkit/pkg/awsprovider"
	"github.com/netkit-sh/netkit/pkg/controller/network"
	"github.com/spf13/cobra"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/runtime"
	"knative.dev/pkg/logging"
)

var options = Options{}

type Options struct {
	Name              string
	AvailabilityZones int64
	PrivateSubnets    bool
	VPCID             string
	SubnetIDs         []string
	SecurityGroupIDs  []string
	PublicSubnetIDs   []string
}

func init() {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Provision a network topology. Will reconnect if the topology already exists.",
		Long:  ``,
		Run:   Apply,
	}
	cmd.Flags().StringVar(&options.Name, "name", "netkit", "Name of the network. Used to name all child resources.")
	cmd.Flags().Int64Var(&options.AvailabilityZones, "availability-zones", 0, "Number of availability zones to create subnets in.")
	cmd.Flags().BoolVar(&options.PrivateSubnets, "private-subnets", false, "Isolate data-plane subnets behind per-zone NAT gateways.")
	cmd.Flags().StringVar(&options.VPCID, "vpc-id", "", "Adopt this existing VPC instead of creating one.")
	cmd.Flags().StringSliceVar(&options.SubnetIDs, "subnet-ids", nil, "Existing subnet IDs, required with --vpc-id.")
	cmd.Flags().StringSliceVar(&options.SecurityGroupIDs, "security-group-ids", nil, "Existing security group IDs, required with --vpc-id.")
	cmd.Flags().StringSliceVar(&options.PublicSubnetIDs, "public-subnet-ids", nil, "Existing public subnet IDs, required with --vpc-id.")
	rootCmd.AddCommand(cmd)
}

func Apply(cmd *cobra.Command, args []string) {
	net := &v1alpha1.Network{ObjectMeta: metav1.ObjectMeta{Name: options.Name}}
	if cmd.Flags().Changed("availability-zones") {
		net.Spec.NumberOfAvailabilityZones = aws.Int64(options.AvailabilityZones)
	}
	if cmd.Flags().Changed("private-subnets") {
		net.Spec.UsePrivateSubnets = aws.Bool(options.PrivateSubnets)
	}
	if cmd.Flags().Changed("vpc-id") {
		net.Spec.VPCID = aws.String(options.VPCID)
		net.Spec.SubnetIDs = options.SubnetIDs
		net.Spec.SecurityGroupIDs = options.SecurityGroupIDs
		net.Spec.PublicSubnetIDs = options.PublicSubnetIDs
	}
	controller := network.NewController(awsprovider.EC2Client(awsprovider.NewSession()))
	runtime.Must(controller.Provision(cmd.Context(), net))
	printTopology(cmd, net)
}

func printTopology(cmd *cobra.Command, net *v1alpha1.Network) {
	log := logging.FromContext(cmd.Context())
	log.Infof("vpcID: %s", net.VPC())
	log.Infof("subnetIDs: %v", net.SubnetIDs())
	log.Infof("publicSubnetIDs: %v", net.PublicSubnetIDs())
	log.Infof("securityGroupIDs: %v", net.SecurityGroupIDs())
	log.Infof("usePrivateSubnets: %t", net.Spec.Private())
}
