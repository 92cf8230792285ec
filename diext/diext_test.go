package diext_test

import "context"

var ctx = context.Background()
