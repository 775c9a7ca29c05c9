package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDisputeBeforeCreate_AssignsID(t *testing.T) {
	d := &Dispute{ReportID: 1, Reason: "lokasi tidak sesuai"}

	err := d.BeforeCreate(nil)

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, d.ID)
}

func TestDisputeBeforeCreate_KeepsExistingID(t *testing.T) {
	id := uuid.New()
	d := &Dispute{ID: id, ReportID: 1, Reason: "foto tidak cocok"}

	err := d.BeforeCreate(nil)

	assert.NoError(t, err)
	assert.Equal(t, id, d.ID)
}
