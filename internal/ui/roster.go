package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/BioHazard786/coderoom/internal/roster"
)

// RosterPanel renders the connected-participants sidebar: an initials
// badge and display name per member, with the local participant marked.
func RosterPanel(theme Theme, participants []roster.Participant, localID string) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.Primary).
		Render(fmt.Sprintf("Connected (%d)", len(participants)))

	if len(participants) == 0 {
		empty := lipgloss.NewStyle().Foreground(theme.Muted).Render("nobody yet")
		return lipgloss.JoinVertical(lipgloss.Left, title, "", empty)
	}

	nameStyle := lipgloss.NewStyle().Foreground(theme.Foreground)
	youStyle := lipgloss.NewStyle().Foreground(theme.Muted)

	rows := make([]string, 0, len(participants))
	for _, p := range participants {
		name := nameStyle.Render(Truncate(p.DisplayName, 16))
		if p.ID == localID {
			name += youStyle.Render(" (you)")
		}
		badge := theme.Badge().Render(Initials(p.DisplayName))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Center, badge, " ", name))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return lipgloss.JoinVertical(lipgloss.Left, title, "", body)
}

// RosterTable renders the roster as a bordered table for plain CLI
// output.
func RosterTable(participants []roster.Participant) string {
	if len(participants) == 0 {
		return MutedStyle.Render("No participants")
	}

	headers := []string{"#", "Username", "Socket ID"}
	var rows [][]string
	for i, p := range participants {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			Truncate(p.DisplayName, 24),
			Truncate(p.ID, 12),
		})
	}

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(Dark.Primary).
		Align(lipgloss.Center)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Dark.Primary)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	return tbl.Render()
}

// RoomInfoView renders the box shown after hosting a new room.
func RoomInfoView(roomID, roomLink string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(Dark.Success).
		Padding(1, 2)

	content := fmt.Sprintf("%s Room Ready!\n\n%s Room ID:    %s\n%s Room Link:  %s",
		IconSuccess,
		IconCopy, BoldStyle.Foreground(Dark.Primary).Render(roomID),
		IconLink, MutedStyle.Render(roomLink),
	)

	return boxStyle.Render(content)
}

// RenderRoomInfo outputs the room box directly to stdout.
func RenderRoomInfo(roomID, roomLink string) {
	fmt.Println(RoomInfoView(roomID, roomLink))
}
