package entity

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/duelrooms-backend/internal/apperror"
)

// MaxMembers - a room pairs exactly two participants.
const MaxMembers = 2

type Variant string

const (
	VariantDotsBoxes Variant = "dots-boxes"
	VariantTicTacToe Variant = "tic-tac-toe"
)

// ParseVariant - resolves the wire game type, an empty value means dots-boxes.
func ParseVariant(raw string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(raw))) {
	case "", VariantDotsBoxes:
		return VariantDotsBoxes, nil
	case VariantTicTacToe:
		return VariantTicTacToe, nil
	default:
		return "", fmt.Errorf("%w: %q", apperror.ErrUnknownVariant, raw)
	}
}

// Label - human readable name used in notifications.
func (that Variant) Label() string {
	if that == VariantTicTacToe {
		return "Tic-Tac-Toe"
	}
	return "Dots and Boxes"
}

type Member struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Room struct {
	Code     string   `json:"code"`
	Members  []Member `json:"players"`
	Variant  Variant  `json:"gameType"`
	GridSize int      `json:"gridSize,omitempty"`
}

// NormalizeCode - room codes are case and whitespace insensitive.
func NormalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

func NewRoom(code string, variant Variant, gridSize int) *Room {
	if variant == VariantTicTacToe {
		gridSize = 0
	}

	return &Room{
		Code:     NormalizeCode(code),
		Members:  make([]Member, 0, MaxMembers),
		Variant:  variant,
		GridSize: gridSize,
	}
}

func (that *Room) IsFull() bool {
	return len(that.Members) >= MaxMembers
}

func (that *Room) IsEmpty() bool {
	return len(that.Members) == 0
}

func (that *Room) HasName(name string) bool {
	for _, member := range that.Members {
		if member.Name == name {
			return true
		}
	}
	return false
}

// AddMember - appends a member, join order is turn order.
func (that *Room) AddMember(member Member) error {
	if that.IsFull() {
		return fmt.Errorf("%w: %d/%d players", apperror.ErrRoomFull, len(that.Members), MaxMembers)
	}

	if that.HasName(member.Name) {
		return fmt.Errorf("%w: %s", apperror.ErrDuplicateName, member.Name)
	}

	that.Members = append(that.Members, member)

	return nil
}

// RemoveMember - removes the member bound to the connection, reports whether it was present.
func (that *Room) RemoveMember(connectionID string) (Member, bool) {
	for i, member := range that.Members {
		if member.ID == connectionID {
			that.Members = append(that.Members[:i], that.Members[i+1:]...)
			return member, true
		}
	}
	return Member{}, false
}

// MemberAt - returns the member holding the given turn index.
func (that *Room) MemberAt(index int) (Member, bool) {
	if index < 0 || index >= len(that.Members) {
		return Member{}, false
	}
	return that.Members[index], true
}

func (that *Room) MemberNames() []string {
	names := make([]string, 0, len(that.Members))
	for _, member := range that.Members {
		names = append(names, member.Name)
	}
	return names
}

func (that *Room) Clone() *Room {
	clone := *that
	clone.Members = append(make([]Member, 0, MaxMembers), that.Members...)
	return &clone
}
