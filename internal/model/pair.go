package model

// Pair is one harvested article: its title and extracted plain text.
// Text is never empty.
type Pair struct {
	Title string
	Text  string
}

// Stats holds the statistics record of a written corpus. Sizes are UTF-8
// byte lengths. Field order matches the sorted key order of the on-disk file.
type Stats struct {
	Count     int64 `json:"count"`
	TextSize  int64 `json:"text_size"`
	TitleSize int64 `json:"title_size"`
}

// Add accounts one pair.
func (s *Stats) Add(p Pair) {
	s.Count++
	s.TitleSize += int64(len(p.Title))
	s.TextSize += int64(len(p.Text))
}
