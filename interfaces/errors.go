// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package interfaces

import (
	"github.com/juju/errors"
)

const (
	// IntegrationNotFound describes an error that occurs when an
	// integration is requested by id and does not exist, or when an
	// integration is required and none is established.
	IntegrationNotFound = errors.ConstError("integration not found")

	// AmbiguousIntegration describes an error that occurs when a single
	// integration is requested without an id while several integrations
	// are established on the endpoint.
	AmbiguousIntegration = errors.ConstError("ambiguous integration")
)
