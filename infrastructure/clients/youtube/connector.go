package youtube

import (
	"context"

	"youtube-auto-post/domain/repository"

	"google.golang.org/api/option"
)

var _ repository.IYouTubeConnector = (*Connector)(nil)

// Connector turns the stored client secrets into an authorised uploader.
type Connector struct {
	credentials *CredentialManager
	chunkSize   int
	opts        []option.ClientOption
}

func NewConnector(credentials *CredentialManager, chunkSize int, opts ...option.ClientOption) *Connector {
	return &Connector{credentials: credentials, chunkSize: chunkSize, opts: opts}
}

func (c *Connector) Connect(ctx context.Context, clientSecrets []byte) (repository.IYouTubeUploader, error) {
	cfg, err := OAuthConfigFromSecrets(clientSecrets, "")
	if err != nil {
		return nil, err
	}
	tok, err := c.credentials.Token(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewYouTubeClient(ctx, cfg.Client(ctx, tok), c.chunkSize, c.opts...)
}
