// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package charm

import (
	"github.com/juju/errors"
)

// ErrIngressAddressNotFound is returned by IngressAddress when the endpoint
// has no ingress address.
const ErrIngressAddressNotFound = errors.ConstError("ingress address not found")

// IngressAddress returns the first ingress address of the endpoint's
// binding.
func IngressAddress(model Model, endpoint string) (string, error) {
	info, err := model.NetworkInfo(endpoint)
	if errors.Is(err, errors.NotFound) {
		return "", errors.Annotatef(ErrIngressAddressNotFound, "endpoint %q has no binding", endpoint)
	} else if err != nil {
		return "", errors.Annotatef(err, "getting network info for %q", endpoint)
	}
	if len(info.IngressAddresses) == 0 {
		return "", errors.Annotatef(ErrIngressAddressNotFound, "endpoint %q", endpoint)
	}
	return info.IngressAddresses[0], nil
}
