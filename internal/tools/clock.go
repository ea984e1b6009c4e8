package tools

import (
	"context"
	"time"
)

// Clock reports the current date and time in the configured timezone.
func Clock(timezone string) Tool {
	return Tool{
		Name:        "clock",
		Description: "Getting the current date and time, Format is 'YYYY-MM-DD HH:mm:ss Z'.",
		Parameters:  noParameters,
		Run: func(ctx context.Context, rawArgs string) (string, error) {
			if timezone == "" {
				return "Timezone has not been configured.", nil
			}
			loc, err := time.LoadLocation(timezone)
			if err != nil {
				return "", err
			}
			return time.Now().In(loc).Format("2006-01-02 15:04:05 -07:00"), nil
		},
	}
}
