package share

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"gruby/internal/models"
	"gruby/internal/repository"
)

type Kind string

const (
	KindShoppingList Kind = "shopping-list"
	KindGathering    Kind = "gathering"
	KindStory        Kind = "story"
)

var ErrUnknownKind = errors.New("unknown share kind")

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindShoppingList, KindGathering, KindStory:
		return k, nil
	}
	return "", ErrUnknownKind
}

type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformWeb     Platform = "web"
)

// DetectPlatform guesses the device family from a User-Agent header.
func DetectPlatform(userAgent string) Platform {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"), strings.Contains(ua, "ipod"):
		return PlatformIOS
	case strings.Contains(ua, "android"):
		return PlatformAndroid
	default:
		return PlatformWeb
	}
}

type Links struct {
	Scheme         string
	AppStoreURL    string
	PlayStoreURL   string
	WebFallbackURL string
}

// DeepLink builds scheme://kind/id.
func (l Links) DeepLink(kind Kind, id string) string {
	scheme := l.Scheme
	if scheme == "" {
		scheme = "gruby"
	}
	return scheme + "://" + string(kind) + "/" + url.PathEscape(id)
}

func (l Links) WebURL(kind Kind, id string) string {
	return strings.TrimRight(l.WebFallbackURL, "/") + "/" + string(kind) + "/" + url.PathEscape(id)
}

// StoreURL is where a device without the app should go.
func (l Links) StoreURL(p Platform) string {
	switch p {
	case PlatformIOS:
		return l.AppStoreURL
	case PlatformAndroid:
		return l.PlayStoreURL
	default:
		return l.WebFallbackURL
	}
}

type Preview struct {
	Title     string     `json:"title"`
	Subtitle  string     `json:"subtitle,omitempty"`
	ItemCount int        `json:"item_count,omitempty"`
	StartsAt  *time.Time `json:"starts_at,omitempty"`
	ImageURL  string     `json:"image_url,omitempty"`
}

type Target struct {
	Kind     Kind     `json:"kind"`
	ID       string   `json:"id"`
	DeepLink string   `json:"deep_link"`
	StoreURL string   `json:"store_url"`
	WebURL   string   `json:"web_url"`
	Platform Platform `json:"platform"`
	Preview  Preview  `json:"preview"`
}

type ShoppingLists interface {
	FindByID(ctx context.Context, id string) (*models.ShoppingList, error)
}

type Gatherings interface {
	FindByID(ctx context.Context, id string) (*models.Gathering, error)
}

type Stories interface {
	FindByID(ctx context.Context, id string) (*models.ContentItem, error)
}

type Service struct {
	links      Links
	lists      ShoppingLists
	gatherings Gatherings
	stories    Stories
}

func NewService(links Links, lists ShoppingLists, gatherings Gatherings, stories Stories) *Service {
	return &Service{links: links, lists: lists, gatherings: gatherings, stories: stories}
}

func (s *Service) Links() Links {
	return s.links
}

// Resolve loads the shared record and builds every link a client may need.
func (s *Service) Resolve(ctx context.Context, kind Kind, id, userAgent string) (*Target, error) {
	preview, err := s.preview(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	platform := DetectPlatform(userAgent)
	return &Target{
		Kind:     kind,
		ID:       id,
		DeepLink: s.links.DeepLink(kind, id),
		StoreURL: s.links.StoreURL(platform),
		WebURL:   s.links.WebURL(kind, id),
		Platform: platform,
		Preview:  *preview,
	}, nil
}

// RedirectURL picks the store for mobile devices and the web page otherwise.
func (s *Service) RedirectURL(kind Kind, id, userAgent string) string {
	platform := DetectPlatform(userAgent)
	if platform == PlatformWeb {
		return s.links.WebURL(kind, id)
	}
	return s.links.StoreURL(platform)
}

func (s *Service) preview(ctx context.Context, kind Kind, id string) (*Preview, error) {
	switch kind {
	case KindShoppingList:
		list, err := s.lists.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return &Preview{Title: list.Title, ItemCount: len(list.Items)}, nil

	case KindGathering:
		g, err := s.gatherings.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		starts := g.StartsAt
		return &Preview{Title: g.Title, Subtitle: g.Location, StartsAt: &starts, ImageURL: g.CoverURL}, nil

	case KindStory:
		story, err := s.stories.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		// only published stories are shareable
		if story.Kind != string(KindStory) || story.Status != models.ModerationApproved {
			return nil, repository.ErrNotFound
		}
		p := &Preview{Title: story.Title, Subtitle: firstLine(story.Body)}
		if len(story.MediaURLs) > 0 {
			p.ImageURL = story.MediaURLs[0]
		}
		return p, nil
	}
	return nil, ErrUnknownKind
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	r := []rune(s)
	if len(r) > 140 {
		return string(r[:140]) + "…"
	}
	return s
}
