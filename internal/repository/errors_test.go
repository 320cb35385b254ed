package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avoronin/bidmarket-backend/internal/repository/common"
)

func TestSentinels_MatchCommonClass(t *testing.T) {
	notFound := []error{ErrProjectNotFound, ErrBidNotFound, ErrConversationNotFound, ErrUserNotFound, ErrContractNotFound}
	for _, err := range notFound {
		assert.ErrorIs(t, err, common.ErrNotFound, err.Error())
	}

	exists := []error{ErrUserExists, ErrContractExists, ErrDuplicateBid}
	for _, err := range exists {
		assert.ErrorIs(t, err, common.ErrAlreadyExists, err.Error())
	}
}

func TestSentinels_WrappedErrorKeepsIdentity(t *testing.T) {
	err := fmt.Errorf("bid repository: get by id %w", ErrBidNotFound)

	assert.True(t, errors.Is(err, ErrBidNotFound))
	assert.True(t, errors.Is(err, common.ErrNotFound))
	assert.False(t, errors.Is(err, common.ErrAlreadyExists))
}
