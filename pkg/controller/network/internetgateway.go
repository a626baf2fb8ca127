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
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/netkit-sh/netkit/pkg/apis/v1alpha1"
	"github.com/netkit-sh/netkit/pkg/awsprovider"
	"github.com/netkit-sh/netkit/pkg/utils/discovery"
	"knative.dev/pkg/logging"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"
)

// InternetGateway attaches the gateway to the VPC and installs the default
// route into the public route table. Status is only recorded once the route
// exists, so downstream resources can rely on the public table being routable.
type InternetGateway struct {
	EC2 *awsprovider.EC2
}

func (i *InternetGateway) Create(ctx context.Context, network *v1alpha1.Network) (reconcile.Result, error) {
	if network.Status.Infrastructure.VPCID == nil || network.Status.Infrastructure.PublicRouteTableID == nil {
		return reconcile.Result{Requeue: true}, nil
	}
	internetGatewayID, err := i.ensure(ctx, network)
	if err != nil {
		return reconcile.Result{}, err
	}
	if _, err := i.EC2.AttachInternetGatewayWithContext(ctx, &ec2.AttachInternetGatewayInput{
		InternetGatewayId: internetGatewayID,
		VpcId:             network.Status.Infrastructure.VPCID,
	}); err != nil {
		if aerr, ok := err.(awserr.Error); !ok || aerr.Code() != "Resource.AlreadyAssociated" {
			return reconcile.Result{}, fmt.Errorf("attaching internet gateway, %w", err)
		}
		logging.FromContext(ctx).Debugf("Found internet gateway attachment %s to %s", aws.StringValue(internetGatewayID), aws.StringValue(network.Status.Infrastructure.VPCID))
	}
	if _, err := i.EC2.CreateRouteWithContext(ctx, &ec2.CreateRouteInput{
		RouteTableId:         network.Status.Infrastructure.PublicRouteTableID,
		DestinationCidrBlock: aws.String("0.0.0.0/0"),
		GatewayId:            internetGatewayID,
	}); err != nil {
		if aerr, ok := err.(awserr.Error); !ok || aerr.Code() != "RouteAlreadyExists" {
			return reconcile.Result{}, fmt.Errorf("creating route for internet gateway, %w", err)
		}
	}
	logging.FromContext(ctx).Debugf("Ensured route for internet gateway %s", aws.StringValue(internetGatewayID))
	network.Status.Infrastructure.InternetGatewayID = internetGatewayID
	return reconcile.Result{}, nil
}

func (i *InternetGateway) ensure(ctx context.Context, network *v1alpha1.Network) (*string, error) {
	describeInternetGatewaysOutput, err := i.EC2.DescribeInternetGatewaysWithContext(ctx, &ec2.DescribeInternetGatewaysInput{Filters: discovery.Filters(network, discovery.Name(network))})
	if err != nil {
		return nil, fmt.Errorf("describing internet gateways, %w", err)
	}
	if len(describeInternetGatewaysOutput.InternetGateways) > 0 {
		logging.FromContext(ctx).Debugf("Found internet gateway %s", network.Name)
		return describeInternetGatewaysOutput.InternetGateways[0].InternetGatewayId, nil
	}
	createInternetGatewayOutput, err := i.EC2.CreateInternetGatewayWithContext(ctx, &ec2.CreateInternetGatewayInput{
		TagSpecifications: discovery.Tags(network, ec2.ResourceTypeInternetGateway, discovery.Name(network)),
	})
	if err != nil {
		return nil, fmt.Errorf("creating internet gateway, %w", err)
	}
	logging.FromContext(ctx).Infof("Created internet gateway %s", network.Name)
	return createInternetGatewayOutput.InternetGateway.InternetGatewayId, nil
}
