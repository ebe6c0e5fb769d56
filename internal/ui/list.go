package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/jingletube/internal/models"
)

var (
	_ list.Item = songItem{}
)

// songItem wraps [models.Song] to implement [list.Item].
type songItem struct {
	song models.Song
}

func (i songItem) FilterValue() string { return i.song.Title }
func (i songItem) Title() string       { return i.song.Title }
func (i songItem) Description() string {
	desc := i.song.Artist
	if i.song.VideoID != "" {
		desc = fmt.Sprintf("%s • video %s", desc, i.song.VideoID)
	}
	return desc
}
