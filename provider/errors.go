package provider

import (
	"fmt"

	fuserrors "github.com/fuselage-sh/fuselage/errors"
)

func errNoSuitable(policyName string) error {
	return fuserrors.New(fuserrors.KindNoSuitableProviders, "", fmt.Sprintf("no suitable provider for policy %q", policyName))
}

func errTooMany(policyName string, count int) error {
	return fuserrors.New(fuserrors.KindTooManyProviders, "", fmt.Sprintf("%d providers claim policy %q, expected exactly one", count, policyName))
}
