package adminclient

import "go-studioadmin/internal/domain/model"

func TeamMembers(c *Client) *Resource[model.TeamMember] {
	return For[model.TeamMember](c, "team-members")
}
func Content(c *Client) *Resource[model.ContentBlock] { return For[model.ContentBlock](c, "content") }
func Sections(c *Client) *Resource[model.Section]     { return For[model.Section](c, "sections") }
func SectionNews(c *Client) *Resource[model.SectionNews] {
	return For[model.SectionNews](c, "section-news")
}
func Groups(c *Client) *Resource[model.Group]          { return For[model.Group](c, "groups") }
func Schedule(c *Client) *Resource[model.ScheduleItem] { return For[model.ScheduleItem](c, "schedule") }
func Applications(c *Client) *Resource[model.Application] {
	return For[model.Application](c, "applications")
}
func Enrollments(c *Client) *Resource[model.Enrollment] {
	return For[model.Enrollment](c, "billing/enrollments")
}

// Payments are listed newest first.
func Payments(c *Client) *Resource[model.Payment] {
	r := For[model.Payment](c, "billing/payments")
	r.Prepend = true
	return r
}
func BlogPosts(c *Client) *Resource[model.BlogPost] { return For[model.BlogPost](c, "blog-posts") }
func GalleryItems(c *Client) *Resource[model.GalleryItem] {
	return For[model.GalleryItem](c, "gallery/items")
}
func Collages(c *Client) *Resource[model.GalleryCollage] {
	return For[model.GalleryCollage](c, "gallery/collages")
}
func Conversations(c *Client) *Resource[model.SupportConversation] {
	return For[model.SupportConversation](c, "support/conversations")
}
func TelegramLinks(c *Client) *Resource[model.TelegramLink] {
	return For[model.TelegramLink](c, "telegram/links")
}
func Users(c *Client) *Resource[model.User] { return For[model.User](c, "users") }
