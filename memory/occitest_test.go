// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

package memory_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/cloudfoam/go-occi/memory"
	"github.com/cloudfoam/go-occi/occi/occitest"
)

// Suite is the per-backend generic test suite.
type Suite struct {
	occitest.Suite
}

// SetupSuite does global setup for the test suite.
func (s *Suite) SetupSuite() {
	s.Suite.SetupSuite()
	s.Backend = memory.New(s.Registry)
}

// TestBackend runs the Backend generic tests.
func TestBackend(t *testing.T) {
	suite.Run(t, &Suite{})
}
