// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/cloudfoam/go-occi/cache"
	"github.com/cloudfoam/go-occi/memory"
	"github.com/cloudfoam/go-occi/occi/occitest"
)

// Suite runs the generic backend tests through the cache decorator,
// over the in-memory reference backend.
type Suite struct {
	occitest.Suite
}

// SetupSuite does global setup for the test suite.
func (s *Suite) SetupSuite() {
	s.Suite.SetupSuite()
	s.Backend = cache.NewWithClock(
		memory.New(s.Registry), cache.DefaultSize, time.Minute, s.Clock)
}

// TestBackend runs the Backend generic tests.
func TestBackend(t *testing.T) {
	suite.Run(t, &Suite{})
}
