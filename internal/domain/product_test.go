package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound1(t *testing.T) {
	assert.Equal(t, 4.5, Round1(4.45))
	assert.Equal(t, 4.4, Round1(4.44))
	assert.Equal(t, 5.0, Round1(4.999))
	assert.Equal(t, 0.0, Round1(0))
}

func TestBlendedRating_SeedOnly(t *testing.T) {
	avg, count := BlendedRating(4.3, 120, 0, 0)
	assert.Equal(t, 4.3, avg)
	assert.Equal(t, 120, count)
}

func TestBlendedRating_SeedPlusFeedback(t *testing.T) {
	// 4.0 x 10 seed + ratings 5 and 3 -> 48 / 12 = 4.0
	avg, count := BlendedRating(4.0, 10, 8, 2)
	assert.Equal(t, 4.0, avg)
	assert.Equal(t, 12, count)
}

func TestBlendedRating_FeedbackOnly(t *testing.T) {
	avg, count := BlendedRating(0, 0, 13, 3)
	assert.Equal(t, 4.3, avg)
	assert.Equal(t, 3, count)
}

func TestBlendedRating_NoMass(t *testing.T) {
	avg, count := BlendedRating(0, 0, 0, 0)
	assert.Equal(t, 0.0, avg)
	assert.Equal(t, 0, count)
}

func TestIsValidPaymentMethod(t *testing.T) {
	assert.True(t, IsValidPaymentMethod(PaymentMethodCash))
	assert.True(t, IsValidPaymentMethod(PaymentMethodCard))
	assert.True(t, IsValidPaymentMethod(PaymentMethodUPI))
	assert.False(t, IsValidPaymentMethod("crypto"))
	assert.False(t, IsValidPaymentMethod(""))
}
