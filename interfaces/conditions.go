// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package interfaces

import (
	"fmt"

	"github.com/charmed-hpc/hpc-libs/charm"
)

// IntegrationExists returns a condition holding when the charm is
// integrated on the named endpoint. It carries no message. Lookup failures
// count as no integration.
func IntegrationExists(model charm.Model, endpoint string) charm.Condition {
	return func(*charm.Event) (bool, string) {
		return integrated(model, endpoint), ""
	}
}

// IntegrationNotExists returns a condition holding when the charm is not
// integrated on the named endpoint, with a message naming the endpoint
// while it holds.
func IntegrationNotExists(model charm.Model, endpoint string) charm.Condition {
	message := fmt.Sprintf("Waiting for integrations: [`%s`]", endpoint)
	return func(*charm.Event) (bool, string) {
		if integrated(model, endpoint) {
			return false, ""
		}
		return true, message
	}
}

func integrated(model charm.Model, endpoint string) bool {
	rels, err := model.Relations(endpoint)
	if err != nil {
		logger.Warningf("getting %q integrations: %v", endpoint, err)
		return false
	}
	return len(rels) > 0
}
