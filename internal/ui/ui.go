package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/jingletube/internal/formatter"
	"github.com/desertthunder/jingletube/internal/library"
	"github.com/desertthunder/jingletube/internal/models"
	"github.com/desertthunder/jingletube/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SongListView ViewState = iota
	AddSongView
	ScoreEntryView
	RankingsView
)

// Field order in the add-song form.
const (
	addTitleField = iota
	addArtistField
	addVideoField
)

// Field order in the score-entry form.
const (
	scoreSingerField = iota
	scoreSongField
	scorePointsField
	scoreHitField
	scoreTotalField
)

// Model represents the TUI application state.
type Model struct {
	view        ViewState
	library     *library.Library
	width       int
	height      int
	songList    list.Model
	addInputs   []textinput.Model
	scoreInputs []textinput.Model
	focus       int
	rankings    string
	status      string
	err         error
	help        help.Model
	keys        keyMap
}

// NewModel creates a new TUI model over the provided songbook.
func NewModel(lib *library.Library) *Model {
	songList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	songList.Title = "JingleTube Songbook"

	return &Model{
		view:        SongListView,
		library:     lib,
		songList:    songList,
		addInputs:   newAddInputs(),
		scoreInputs: newScoreInputs(),
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

func newAddInputs() []textinput.Model {
	placeholders := []string{"Take On Me", "a-ha", "https://youtu.be/djV11Xbc914"}
	inputs := make([]textinput.Model, len(placeholders))
	for i := range inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = 200
		in.Width = 48
		inputs[i] = in
	}
	return inputs
}

func newScoreInputs() []textinput.Model {
	placeholders := []string{"Alex", "Take On Me", "8450", "173", "200"}
	inputs := make([]textinput.Model, len(placeholders))
	for i := range inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = 120
		in.Width = 32
		inputs[i] = in
	}
	return inputs
}

// Init initializes the TUI by loading the songbook.
func (m *Model) Init() tea.Cmd {
	return m.loadSongs()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.songList.Width() == 0 {
			m.songList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SongListView:
			return m.handleSongListKeys(msg)
		case AddSongView:
			return m.handleAddSongKeys(msg)
		case ScoreEntryView:
			return m.handleScoreEntryKeys(msg)
		case RankingsView:
			return m.handleRankingsKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case SongListView:
		return m.renderSongList()
	case AddSongView:
		return m.renderAddSong()
	case ScoreEntryView:
		return m.renderScoreEntry()
	case RankingsView:
		return m.renderRankings()
	default:
		return ""
	}
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSongsLoaded:
		songs := msg.data.([]models.Song)
		items := make([]list.Item, len(songs))
		for i, song := range songs {
			items[i] = songItem{song: song}
		}
		m.songList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.songList.Title = fmt.Sprintf("JingleTube Songbook (%d songs)", len(songs))
		if m.width > 0 {
			m.songList.SetSize(m.width-4, m.height-8)
		}
		return m, nil

	case MsgSongAdded:
		res := msg.data.(addSongResult)
		if res.err != nil {
			m.err = res.err
			return m, nil
		}
		m.err = nil
		m.status = formatter.FormatSongAdded(res.song)
		m.resetForms()
		m.view = SongListView
		return m, m.loadSongs()

	case MsgScoreRecorded:
		res := msg.data.(recordScoreResult)
		if res.err != nil {
			m.err = res.err
			return m, nil
		}
		m.err = nil
		m.status = formatter.FormatScoreRegistered(res.score)
		m.resetForms()
		return m, m.loadRankings()

	case MsgRankingsLoaded:
		m.rankings = msg.data.(string)
		m.view = RankingsView
		return m, nil
	}

	return m, nil
}

func (m *Model) handleSongListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While the list filter is open every keystroke belongs to it.
	if m.songList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.songList, cmd = m.songList.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "a":
		m.clearNotices()
		m.view = AddSongView
		return m, m.focusField(m.addInputs, addTitleField)
	case "s":
		m.clearNotices()
		m.view = ScoreEntryView
		return m, m.focusField(m.scoreInputs, scoreSingerField)
	case "r":
		return m, m.loadRankings()
	case "enter":
		selected := m.songList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(songItem); ok {
				m.clearNotices()
				m.scoreInputs[scoreSongField].SetValue(item.song.Title)
				m.view = ScoreEntryView
				return m, m.focusField(m.scoreInputs, scoreSingerField)
			}
		}
	}

	var cmd tea.Cmd
	m.songList, cmd = m.songList.Update(msg)
	return m, cmd
}

func (m *Model) handleAddSongKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.resetForms()
		m.view = SongListView
		return m, nil
	case "enter":
		if m.focus == len(m.addInputs)-1 {
			return m, m.submitSong()
		}
		return m, m.focusField(m.addInputs, m.focus+1)
	case "tab", "down":
		return m, m.focusField(m.addInputs, (m.focus+1)%len(m.addInputs))
	case "shift+tab", "up":
		return m, m.focusField(m.addInputs, (m.focus+len(m.addInputs)-1)%len(m.addInputs))
	}

	return m, m.updateInputs(msg, m.addInputs)
}

func (m *Model) handleScoreEntryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.resetForms()
		m.view = SongListView
		return m, nil
	case "enter":
		if m.focus == len(m.scoreInputs)-1 {
			return m, m.submitScore()
		}
		return m, m.focusField(m.scoreInputs, m.focus+1)
	case "tab", "down":
		return m, m.focusField(m.scoreInputs, (m.focus+1)%len(m.scoreInputs))
	case "shift+tab", "up":
		return m, m.focusField(m.scoreInputs, (m.focus+len(m.scoreInputs)-1)%len(m.scoreInputs))
	}

	return m, m.updateInputs(msg, m.scoreInputs)
}

func (m *Model) handleRankingsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.status = ""
		m.view = SongListView
		return m, nil
	case "r":
		return m, m.loadRankings()
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.view == SongListView {
		m.songList, cmd = m.songList.Update(msg)
	}
	return m, cmd
}

// focusField focuses one input in the form and blurs the rest.
func (m *Model) focusField(inputs []textinput.Model, idx int) tea.Cmd {
	m.focus = idx
	var cmds []tea.Cmd
	for i := range inputs {
		if i == idx {
			cmds = append(cmds, inputs[i].Focus())
			continue
		}
		inputs[i].Blur()
	}
	return tea.Batch(cmds...)
}

func (m *Model) updateInputs(msg tea.Msg, inputs []textinput.Model) tea.Cmd {
	cmds := make([]tea.Cmd, len(inputs))
	for i := range inputs {
		inputs[i], cmds[i] = inputs[i].Update(msg)
	}
	return tea.Batch(cmds...)
}

func (m *Model) resetForms() {
	for i := range m.addInputs {
		m.addInputs[i].SetValue("")
		m.addInputs[i].Blur()
	}
	for i := range m.scoreInputs {
		m.scoreInputs[i].SetValue("")
		m.scoreInputs[i].Blur()
	}
	m.focus = 0
	m.err = nil
}

func (m *Model) clearNotices() {
	m.status = ""
	m.err = nil
}

func (m *Model) loadSongs() tea.Cmd {
	return func() tea.Msg {
		return songsLoadedMsg(m.library.Songs())
	}
}

func (m *Model) loadRankings() tea.Cmd {
	return func() tea.Msg {
		board := formatter.FormatRankings(m.library.Rankings(library.DefaultRankingLimit))
		return rankingsLoadedMsg(board)
	}
}

func (m *Model) submitSong() tea.Cmd {
	title := strings.TrimSpace(m.addInputs[addTitleField].Value())
	artist := strings.TrimSpace(m.addInputs[addArtistField].Value())
	videoURL := strings.TrimSpace(m.addInputs[addVideoField].Value())

	return func() tea.Msg {
		song, err := m.library.AddSong(title, artist, "", videoURL)
		return songAddedMsg(song, err)
	}
}

func (m *Model) submitScore() tea.Cmd {
	singer := strings.TrimSpace(m.scoreInputs[scoreSingerField].Value())
	song := strings.TrimSpace(m.scoreInputs[scoreSongField].Value())

	points, perr := strconv.Atoi(strings.TrimSpace(m.scoreInputs[scorePointsField].Value()))
	hit, herr := strconv.Atoi(strings.TrimSpace(m.scoreInputs[scoreHitField].Value()))
	total, terr := strconv.Atoi(strings.TrimSpace(m.scoreInputs[scoreTotalField].Value()))
	if perr != nil || herr != nil || terr != nil {
		m.err = fmt.Errorf("%w: score, notes hit and notes total must be numbers", shared.ErrInvalidScore)
		return nil
	}

	return func() tea.Msg {
		score, err := m.library.AddScore(singer, song, points, hit, total)
		return scoreRecordedMsg(score, err)
	}
}

func (m *Model) renderSongList() string {
	var notice string
	if m.err != nil {
		notice = "\n" + styles.err.Render(fmt.Sprintf("✗ %v", m.err))
	} else if m.status != "" {
		notice = "\n" + styles.ok.Render(m.status)
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.add, m.keys.score, m.keys.rankings, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s%s\n\n%s", m.songList.View(), notice, helpView)
}

func (m *Model) renderAddSong() string {
	title := styles.title.Render("Add a Song")
	labels := []string{"Title", "Artist", "YouTube URL (optional)"}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	for i := range m.addInputs {
		b.WriteString(styles.help.Render(labels[i]))
		b.WriteString("\n")
		b.WriteString(m.addInputs[i].View())
		b.WriteString("\n\n")
	}
	if m.err != nil {
		b.WriteString(styles.err.Render(fmt.Sprintf("✗ %v", m.err)))
		b.WriteString("\n\n")
	}

	submitKey := key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "next/submit"),
	)
	b.WriteString(m.help.ShortHelpView([]key.Binding{submitKey, m.keys.back}))
	return b.String()
}

func (m *Model) renderScoreEntry() string {
	title := styles.title.Render("Record a Score")
	labels := []string{"Singer", "Song", "Score (points)", "Notes hit", "Notes total"}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	for i := range m.scoreInputs {
		b.WriteString(styles.help.Render(labels[i]))
		b.WriteString("\n")
		b.WriteString(m.scoreInputs[i].View())
		b.WriteString("\n\n")
	}
	if m.err != nil {
		b.WriteString(styles.err.Render(fmt.Sprintf("✗ %v", m.err)))
		b.WriteString("\n\n")
	}

	submitKey := key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "next/submit"),
	)
	b.WriteString(m.help.ShortHelpView([]key.Binding{submitKey, m.keys.back}))
	return b.String()
}

func (m *Model) renderRankings() string {
	body := m.rankings
	if m.status != "" {
		body = styles.ok.Render(m.status) + "\n\n" + body
	}

	refreshKey := key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	)
	helpKeys := []key.Binding{m.keys.back, refreshKey, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", body, helpView)
}
