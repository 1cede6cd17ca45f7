package kakao

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"daily-quiz-bot/internal/domain"
)

const messageSendPath = "/v1/api/talk/channels/msg/send"

var _ domain.Messenger = (*Client)(nil)

type templateLink struct {
	WebURL       string `json:"web_url,omitempty"`
	MobileWebURL string `json:"mobile_web_url,omitempty"`
}

type templateButton struct {
	Title string       `json:"title"`
	Link  templateLink `json:"link"`
}

type textTemplate struct {
	ObjectType string           `json:"object_type"`
	Text       string           `json:"text"`
	Link       templateLink     `json:"link"`
	Buttons    []templateButton `json:"buttons,omitempty"`
}

func buildTemplate(msg domain.Message) textTemplate {
	tpl := textTemplate{
		ObjectType: "text",
		Text:       msg.Text,
		Link:       templateLink{WebURL: msg.Link, MobileWebURL: msg.Link},
	}
	for _, b := range msg.Buttons {
		tpl.Buttons = append(tpl.Buttons, templateButton{
			Title: b.Title,
			Link:  templateLink{WebURL: b.URL, MobileWebURL: b.URL},
		})
	}
	return tpl
}

// Send отправляет текстовое сообщение пользователю канала.
func (c *Client) Send(ctx context.Context, recipientID string, msg domain.Message) error {
	receivers, err := json.Marshal([]string{recipientID})
	if err != nil {
		return fmt.Errorf("marshal receivers: %w", err)
	}
	tpl, err := json.Marshal(buildTemplate(msg))
	if err != nil {
		return fmt.Errorf("marshal template: %w", err)
	}
	form := url.Values{}
	form.Set("receiver_uuids", string(receivers))
	form.Set("template_object", string(tpl))

	if _, err := c.postForm(ctx, "message_send", messageSendPath, form); err != nil {
		return err
	}
	return nil
}
