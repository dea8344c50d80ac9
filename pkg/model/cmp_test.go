package model

import (
	"github.com/google/go-cmp/cmp"
)

var cmpItems = cmp.AllowUnexported(Item{})
