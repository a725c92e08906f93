package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/marketplace-backend/internal/apperror"
)

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("Transferred to delivery partner")
	require.NoError(t, err)
	assert.Equal(t, StatusTransferred, st)

	_, err = ParseStatus("Lost")
	assert.ErrorIs(t, err, ErrUnknownStatus)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = ParseStatus("")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestTransitionTable(t *testing.T) {
	all := []Status{
		StatusProcessing, StatusTransferred, StatusShipping, StatusOnTheWay,
		StatusDelivered, StatusRefundRequested, StatusRefundSuccess,
	}
	legal := map[Status]map[Status]bool{
		StatusProcessing:      {StatusTransferred: true, StatusRefundRequested: true},
		StatusTransferred:     {StatusShipping: true, StatusOnTheWay: true, StatusDelivered: true, StatusRefundRequested: true},
		StatusShipping:        {StatusOnTheWay: true, StatusDelivered: true},
		StatusOnTheWay:        {StatusDelivered: true},
		StatusDelivered:       {StatusRefundRequested: true},
		StatusRefundRequested: {StatusRefundSuccess: true},
	}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, legal[from][to], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}
