package adminclient

import "context"

type Stat struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value int64  `json:"value"`
}

// Dashboard fetches the stats in the order the server ranks them.
func Dashboard(ctx context.Context, c *Client) ([]Stat, error) {
	res, err := Get[ListResponse[Stat]](ctx, c, "dashboard")
	return res.Items, err
}

// SubmitTrial posts the public trial-lesson form.
func SubmitTrial(ctx context.Context, c *Client, form map[string]any) error {
	_, err := Post[struct {
		OK bool `json:"ok"`
	}](ctx, c, "/api/trial", form)
	return err
}
