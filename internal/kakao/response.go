package kakao

import (
	"fmt"
	"strings"

	"kakao-store-bot/internal/store"
)

const (
	templateVersion = "2.0"

	listHeaderTitle = "추천 맛집 리스트"
	detailsLabel    = "상세보기"
	callLabel       = "전화하기"
	linkLabel       = "SNS 보기"

	maxListItems       = 5
	maxTitleRunes      = 30
	maxDescribeRunes   = 100
	maxMenuPreviewSize = 3
)

// Response is the versioned skill reply envelope.
type Response struct {
	Version  string   `json:"version"`
	Template Template `json:"template"`
}

type Template struct {
	Outputs []Output `json:"outputs"`
}

type Output struct {
	SimpleTextOutput *SimpleTextOutput `json:"simpleText,omitempty"`
	ListCardOutput   *ListCardOutput   `json:"listCard,omitempty"`
	BasicCardOutput  *BasicCardOutput  `json:"basicCard,omitempty"`
}

type SimpleTextOutput struct {
	Text string `json:"text"`
}

type ListCardOutput struct {
	Header  ListHeader `json:"header"`
	Items   []ListItem `json:"items"`
	Buttons []Button   `json:"buttons,omitempty"`
}

type ListHeader struct {
	Title string `json:"title"`
}

type ListItem struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	ImageURL    string         `json:"imageUrl,omitempty"`
	Action      string         `json:"action,omitempty"`
	BlockID     string         `json:"blockId,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

type BasicCardOutput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Buttons     []Button `json:"buttons,omitempty"`
}

type Button struct {
	Label       string         `json:"label"`
	Action      string         `json:"action"`
	BlockID     string         `json:"blockId,omitempty"`
	PhoneNumber string         `json:"phoneNumber,omitempty"`
	WebLinkURL  string         `json:"webLinkUrl,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

func SimpleText(text string) Response {
	return wrap(Output{SimpleTextOutput: &SimpleTextOutput{Text: text}})
}

// ListCard renders up to five stores. Tapping an item (or its details
// button) jumps to the detail block with the store id/name as clientExtra.
func ListCard(stores []store.Record, detailBlockID string) Response {
	items := make([]ListItem, 0, maxListItems)

	for _, s := range stores {
		if len(items) == maxListItems {
			break
		}

		var preview []string
		for _, item := range s.Services {
			if len(preview) == maxMenuPreviewSize {
				break
			}
			if item.Menu != "" {
				preview = append(preview, item.Menu)
			}
		}

		description := fmt.Sprintf("%s | %s\n메뉴: %s",
			s.Category, s.Address, strings.Join(preview, ", "))

		items = append(items, ListItem{
			Title:       truncate(s.Name, maxTitleRunes),
			Description: truncate(description, maxDescribeRunes),
			Action:      "block",
			BlockID:     detailBlockID,
			Extra: map[string]any{
				"store_id":   s.ID,
				"store_name": s.Name,
			},
		})
	}

	return wrap(Output{ListCardOutput: &ListCardOutput{
		Header: ListHeader{Title: listHeaderTitle},
		Items:  items,
	}})
}

// BasicCard renders the full store profile with call / link buttons when
// the store has a phone number or an external link.
func BasicCard(s store.Record) Response {
	var b strings.Builder

	fmt.Fprintf(&b, "📍 주소: %s\n", s.Address)
	fmt.Fprintf(&b, "📞 전화: %s\n", s.Phone)
	fmt.Fprintf(&b, "⏰ 영업시간: %s ~ %s\n", s.OpenHour, s.CloseHour)
	fmt.Fprintf(&b, "🚫 휴무일: %s\n", strings.Join(s.Holidays, ", "))

	b.WriteString("\n📋 메뉴:\n")
	for _, item := range s.Services {
		fmt.Fprintf(&b, "• %s: %s원\n", item.Menu, store.FormatPrice(item.Price))
	}

	if s.Strengths != "" {
		fmt.Fprintf(&b, "\n✨ 강점: %s", s.Strengths)
	}
	if s.Parking != "" {
		fmt.Fprintf(&b, "\n🅿️ 주차: %s", s.Parking)
	}

	var buttons []Button
	if s.Phone != "" {
		buttons = append(buttons, Button{
			Label:       callLabel,
			Action:      "phone",
			PhoneNumber: s.Phone,
		})
	}
	if s.LinkURL != "" {
		buttons = append(buttons, Button{
			Label:      linkLabel,
			Action:     "webLink",
			WebLinkURL: s.LinkURL,
		})
	}

	return wrap(Output{BasicCardOutput: &BasicCardOutput{
		Title:       s.Name,
		Description: strings.TrimSpace(b.String()),
		Buttons:     buttons,
	}})
}

func wrap(outputs ...Output) Response {
	return Response{
		Version:  templateVersion,
		Template: Template{Outputs: outputs},
	}
}

// truncate is rune-safe; Kakao counts characters, not bytes.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
