package skills

import (
	"context"

	"zara/internal/router"
)

const GoodbyeText = "Goodbye! Have a great day!"

var Goodbye = router.HandlerFunc(func(context.Context, router.Request) (string, error) {
	return GoodbyeText, nil
})
