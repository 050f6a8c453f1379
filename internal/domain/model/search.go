package model

// SearchFields methods list the fields the admin free-text filter matches
// against. The API and the admin client share them.

func (m *TeamMember) SearchFields() []string   { return []string{m.Name, m.Role} }
func (b *ContentBlock) SearchFields() []string { return []string{b.Key, b.Page, b.Title} }
func (s *Section) SearchFields() []string      { return []string{s.Name, s.Slug} }
func (n *SectionNews) SearchFields() []string  { return []string{n.Title} }
func (g *Group) SearchFields() []string        { return []string{g.Name, g.Style, g.Level} }
func (s *ScheduleItem) SearchFields() []string {
	return []string{s.Title, s.GroupName, s.Teacher, s.Room}
}
func (e *Enrollment) SearchFields() []string     { return []string{e.UserName, e.GroupName} }
func (p *Payment) SearchFields() []string        { return []string{p.UserName, p.Method, p.Status} }
func (p *BlogPost) SearchFields() []string       { return []string{p.Title, p.Slug} }
func (g *GalleryItem) SearchFields() []string    { return []string{g.Title, g.Category} }
func (g *GalleryCollage) SearchFields() []string { return []string{g.Title, g.Layout} }

func (a *Application) SearchFields() []string {
	return []string{a.Name, a.Phone, str(a.Email), a.Style, a.Status}
}

func (s *SupportConversation) SearchFields() []string {
	return []string{s.Subject, s.UserName, s.Status}
}

func (l *TelegramLink) SearchFields() []string {
	return []string{str(l.Username), l.UserName, l.ChatID}
}

func (u *User) SearchFields() []string {
	return []string{u.Name, str(u.Email), str(u.Phone), u.Role}
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
