package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitCrops(t *testing.T) {
	assert.Nil(t, SplitCrops(""))
	assert.Nil(t, SplitCrops("   "))
	assert.Equal(t, []string{"maize"}, SplitCrops("maize"))
	assert.Equal(t, []string{"maize", "beans"}, SplitCrops("maize,beans"))
	// Stray commas and padding are dropped.
	assert.Equal(t, []string{"maize", "beans"}, SplitCrops(" maize ,, beans ,"))
}

func TestJoinCrops(t *testing.T) {
	assert.Equal(t, "", JoinCrops(nil))
	assert.Equal(t, "", JoinCrops([]string{"", "  "}))
	assert.Equal(t, "maize,beans", JoinCrops([]string{" maize ", "", "beans"}))
}

func TestJoinSplitRoundTrip(t *testing.T) {
	crops := []string{"maize", "coffee", "tea"}
	assert.Equal(t, crops, SplitCrops(JoinCrops(crops)))
}

func TestUserCropList(t *testing.T) {
	u := User{Crops: "rice, wheat"}
	assert.Equal(t, []string{"rice", "wheat"}, u.CropList())
}
