// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pointer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/lessons/pkg/pointer"
)

func TestPointer(t *testing.T) {
	var missing *string

	assert.Equal(t, "", pointer.Val(missing))
	assert.Equal(t, "premium", pointer.Val(pointer.To("premium")))
	assert.Equal(t, "free", pointer.Fallback(missing, "free"))
	assert.Equal(t, 3, pointer.Fallback(pointer.To(3), 7))
}
