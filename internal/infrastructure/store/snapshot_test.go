package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotDue(t *testing.T) {
	tests := []struct {
		version int
		want    bool
	}{
		{0, false},
		{1, false},
		{SnapshotThreshold - 1, false},
		{SnapshotThreshold, true},
		{SnapshotThreshold + 1, false},
		{3 * SnapshotThreshold, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SnapshotDue(tt.version), "version %d", tt.version)
	}
}
