package registration

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"ride-registration-bot/posts"
)

var messageLinkPattern = regexp.MustCompile(`t\.me/c/(\d+)/(\d+)`)

// MessageLink builds a t.me link to a channel message. Private channel ids
// carry a -100 prefix that the link format drops.
func MessageLink(channelID int64, messageID int) string {
	id := strconv.FormatInt(channelID, 10)
	id = strings.TrimPrefix(id, "-100")
	return fmt.Sprintf("https://t.me/c/%v/%v", id, messageID)
}

// ParseMessageLink extracts the post key from a t.me/c/... link.
func ParseMessageLink(text string) (posts.Key, bool) {
	submatch := messageLinkPattern.FindStringSubmatch(text)
	if submatch == nil {
		return posts.Key{}, false
	}
	channelID, err := strconv.ParseInt("-100"+submatch[1], 10, 64)
	if err != nil {
		return posts.Key{}, false
	}
	messageID, err := strconv.Atoi(submatch[2])
	if err != nil {
		return posts.Key{}, false
	}
	return posts.Key{ChannelID: channelID, MessageID: messageID}, true
}
