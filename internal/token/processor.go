package token

import (
	"context"
	"time"

	"insurance-voice-agent/internal/config"
	"insurance-voice-agent/internal/observability"

	"github.com/golang-jwt/jwt/v5"
)

const tokenTTL = 6 * time.Hour

// VideoGrants describe what the token holder may do in the media room.
type VideoGrants struct {
	RoomJoin          bool     `json:"roomJoin"`
	Room              string   `json:"room"`
	CanPublish        bool     `json:"canPublish"`
	CanSubscribe      bool     `json:"canSubscribe"`
	CanPublishSources []string `json:"canPublishSources"`
}

// RoomAgentDispatch requests automatic dispatch of the voice agent when
// the participant joins.
type RoomAgentDispatch struct {
	AgentName string `json:"agentName"`
	Metadata  string `json:"metadata"`
}

// RoomConfiguration is embedded in the token so the media server knows
// which agent to attach to the room.
type RoomConfiguration struct {
	Agents []RoomAgentDispatch `json:"agents"`
}

// Processor mints join tokens for the web frontend.
type Processor struct {
	config config.MediaConfig
	logger *observability.Logger
}

func New(cfg config.MediaConfig, logger *observability.Logger) Processor {
	return Processor{
		config: cfg,
		logger: logger,
	}
}

// Mint returns a signed join token granting audio/video publication in the
// support room, with automatic agent dispatch.
func (p Processor) Mint(ctx context.Context, identity string) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"sub":  identity,
		"name": identity,
		"iss":  p.config.APIKey,
		"iat":  now.Unix(),
		"nbf":  now.Unix(),
		"exp":  now.Add(tokenTTL).Unix(),
		"video": VideoGrants{
			RoomJoin:          true,
			Room:              p.config.RoomName,
			CanPublish:        true,
			CanSubscribe:      true,
			CanPublishSources: []string{"camera", "microphone"},
		},
		"roomConfig": RoomConfiguration{
			Agents: []RoomAgentDispatch{
				{AgentName: p.config.AgentName, Metadata: "backend-dispatch"},
			},
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(p.config.APISecret))
	if err != nil {
		p.logger.Error(ctx, "failed to sign join token", err)
		return "", err
	}
	return signed, nil
}

// Room returns the room name tokens are scoped to.
func (p Processor) Room() string {
	return p.config.RoomName
}
