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

package network

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/netkit-sh/netkit/pkg/apis/v1alpha1"
	"github.com/netkit-sh/netkit/pkg/awsprovider"
	"github.com/netkit-sh/netkit/pkg/utils/discovery"
	"go.uber.org/multierr"
	"k8s.io/client-go/util/workqueue"
	"knative.dev/pkg/logging"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"
)

// NatGateways provisions one gateway per zone inside the zone's NAT-facing
// subnet. A gateway is requested only once its subnet's route table
// association has been recorded; the subnet must be routable before the
// gateway starts provisioning.
type NatGateways struct {
	EC2 *awsprovider.EC2
}

func (n *NatGateways) Create(ctx context.Context, network *v1alpha1.Network) (reconcile.Result, error) {
	if !network.Spec.Private() {
		return reconcile.Result{}, nil
	}
	zones := network.Spec.Zones()
	infrastructure := network.Status.Infrastructure
	if len(infrastructure.PublicSubnetIDs) != zones ||
		len(infrastructure.NatSubnetAssociationIDs) != zones ||
		len(infrastructure.ElasticIPIDs) != zones {
		return reconcile.Result{Requeue: true}, nil
	}
	natGatewayIDs := make([]*string, zones)
	errs := make([]error, zones)
	workqueue.ParallelizeUntil(ctx, zones, zones, func(i int) {
		natGatewayIDs[i], errs[i] = n.ensure(ctx, network, i)
	})
	if err := multierr.Combine(errs...); err != nil {
		return reconcile.Result{}, err
	}
	network.Status.Infrastructure.NatGatewayIDs = natGatewayIDs
	return reconcile.Result{}, nil
}

func (n *NatGateways) ensure(ctx context.Context, network *v1alpha1.Network, zone int) (*string, error) {
	name := discovery.Name(network, "nat", fmt.Sprint(zone))
	natGatewayID, err := n.find(ctx, network, name)
	if err != nil {
		return nil, err
	}
	if natGatewayID != nil {
		logging.FromContext(ctx).Debugf("Found NAT gateway %s", aws.StringValue(name))
		return natGatewayID, nil
	}
	createNatGatewayOutput, err := n.EC2.CreateNatGatewayWithContext(ctx, &ec2.CreateNatGatewayInput{
		AllocationId:      network.Status.Infrastructure.ElasticIPIDs[zone],
		SubnetId:          network.Status.Infrastructure.PublicSubnetIDs[zone],
		TagSpecifications: discovery.Tags(network, ec2.ResourceTypeNatgateway, name),
	})
	if err != nil {
		return nil, fmt.Errorf("creating NAT gateway, %w", err)
	}
	logging.FromContext(ctx).Infof("Created NAT gateway %s, ID %s", aws.StringValue(name), aws.StringValue(createNatGatewayOutput.NatGateway.NatGatewayId))
	// Describe calls right after creation can miss the new gateway; waiting
	// here keeps a re-entrant run from creating duplicates.
	if err := n.EC2.WaitUntilNatGatewayAvailableWithContext(ctx, &ec2.DescribeNatGatewaysInput{NatGatewayIds: []*string{createNatGatewayOutput.NatGateway.NatGatewayId}}); err != nil {
		return nil, fmt.Errorf("waiting for NAT gateway to be ready, %w", err)
	}
	return createNatGatewayOutput.NatGateway.NatGatewayId, nil
}

func (n *NatGateways) find(ctx context.Context, network *v1alpha1.Network, name *string) (*string, error) {
	describeNatGatewaysOutput, err := n.EC2.DescribeNatGatewaysWithContext(ctx, &ec2.DescribeNatGatewaysInput{Filter: discovery.Filters(network, name)})
	if err != nil {
		return nil, fmt.Errorf("describing NAT gateways, %w", err)
	}
	for _, natGateway := range describeNatGatewaysOutput.NatGateways {
		switch aws.StringValue(natGateway.State) {
		case ec2.NatGatewayStateDeleting, ec2.NatGatewayStateDeleted, ec2.NatGatewayStateFailed:
			continue
		}
		return natGateway.NatGatewayId, nil
	}
	return nil, nil
}
