package share

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"gruby/internal/models"
	"gruby/internal/repository"
)

const (
	iphoneUA  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15"
	androidUA = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 Chrome/120.0 Mobile"
	desktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0"
)

var testLinks = Links{
	Scheme:         "gruby",
	AppStoreURL:    "https://apps.apple.com/app/gruby",
	PlayStoreURL:   "https://play.google.com/store/apps/details?id=com.gruby.app",
	WebFallbackURL: "https://gruby.app/",
}

type lists map[string]*models.ShoppingList

func (l lists) FindByID(_ context.Context, id string) (*models.ShoppingList, error) {
	if v, ok := l[id]; ok {
		return v, nil
	}
	return nil, repository.ErrNotFound
}

type gatherings map[string]*models.Gathering

func (g gatherings) FindByID(_ context.Context, id string) (*models.Gathering, error) {
	if v, ok := g[id]; ok {
		return v, nil
	}
	return nil, repository.ErrNotFound
}

type stories map[string]*models.ContentItem

func (s stories) FindByID(_ context.Context, id string) (*models.ContentItem, error) {
	if v, ok := s[id]; ok {
		return v, nil
	}
	return nil, repository.ErrNotFound
}

func TestParseKind(t *testing.T) {
	for _, k := range []string{"shopping-list", "gathering", "story"} {
		got, err := ParseKind(k)
		require.NoError(t, err)
		assert.Equal(t, Kind(k), got)
	}
	_, err := ParseKind("recipe")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestDetectPlatform(t *testing.T) {
	assert.Equal(t, PlatformIOS, DetectPlatform(iphoneUA))
	assert.Equal(t, PlatformIOS, DetectPlatform("Mozilla/5.0 (iPad; CPU OS 16_0)"))
	assert.Equal(t, PlatformAndroid, DetectPlatform(androidUA))
	assert.Equal(t, PlatformWeb, DetectPlatform(desktopUA))
	assert.Equal(t, PlatformWeb, DetectPlatform(""))
}

func TestLinks(t *testing.T) {
	assert.Equal(t, "gruby://shopping-list/abc", testLinks.DeepLink(KindShoppingList, "abc"))
	assert.Equal(t, "gruby://story/a%2Fb", testLinks.DeepLink(KindStory, "a/b"))
	assert.Equal(t, "gruby://gathering/1", Links{}.DeepLink(KindGathering, "1"))
	assert.Equal(t, "https://gruby.app/gathering/42", testLinks.WebURL(KindGathering, "42"))
	assert.Equal(t, testLinks.AppStoreURL, testLinks.StoreURL(PlatformIOS))
	assert.Equal(t, testLinks.PlayStoreURL, testLinks.StoreURL(PlatformAndroid))
	assert.Equal(t, testLinks.WebFallbackURL, testLinks.StoreURL(PlatformWeb))
}

func TestResolveShoppingList(t *testing.T) {
	svc := NewService(testLinks, lists{"l1": {Title: "Sunday roast", Items: []models.ShoppingListItem{{Name: "beef"}, {Name: "potatoes"}}}}, gatherings{}, stories{})

	target, err := svc.Resolve(context.Background(), KindShoppingList, "l1", androidUA)
	require.NoError(t, err)
	assert.Equal(t, "gruby://shopping-list/l1", target.DeepLink)
	assert.Equal(t, PlatformAndroid, target.Platform)
	assert.Equal(t, testLinks.PlayStoreURL, target.StoreURL)
	assert.Equal(t, "Sunday roast", target.Preview.Title)
	assert.Equal(t, 2, target.Preview.ItemCount)
}

func TestResolveGathering(t *testing.T) {
	starts := time.Date(2026, 11, 6, 19, 0, 0, 0, time.UTC)
	svc := NewService(testLinks, lists{}, gatherings{"g1": {Title: "Dumpling night", Location: "Kraków", StartsAt: starts}}, stories{})

	target, err := svc.Resolve(context.Background(), KindGathering, "g1", iphoneUA)
	require.NoError(t, err)
	assert.Equal(t, "Kraków", target.Preview.Subtitle)
	require.NotNil(t, target.Preview.StartsAt)
	assert.True(t, starts.Equal(*target.Preview.StartsAt))
	assert.Equal(t, testLinks.AppStoreURL, target.StoreURL)
}

func TestResolveStoryOnlyWhenApproved(t *testing.T) {
	id := primitive.NewObjectID()
	svc := NewService(testLinks, lists{}, gatherings{}, stories{
		"ok":      {ID: id, Kind: "story", Title: "Grandma's kitchen", Body: "It started with flour.\nThen eggs.", Status: models.ModerationApproved},
		"pending": {Kind: "story", Title: "Draft", Status: models.ModerationPending},
		"recipe":  {Kind: "recipe", Title: "Not a story", Status: models.ModerationApproved},
	})

	target, err := svc.Resolve(context.Background(), KindStory, "ok", desktopUA)
	require.NoError(t, err)
	assert.Equal(t, "It started with flour.", target.Preview.Subtitle)

	_, err = svc.Resolve(context.Background(), KindStory, "pending", desktopUA)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = svc.Resolve(context.Background(), KindStory, "recipe", desktopUA)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestResolveMissing(t *testing.T) {
	svc := NewService(testLinks, lists{}, gatherings{}, stories{})

	_, err := svc.Resolve(context.Background(), KindShoppingList, "nope", desktopUA)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRedirectURL(t *testing.T) {
	svc := NewService(testLinks, lists{}, gatherings{}, stories{})

	assert.Equal(t, testLinks.AppStoreURL, svc.RedirectURL(KindGathering, "g1", iphoneUA))
	assert.Equal(t, testLinks.PlayStoreURL, svc.RedirectURL(KindGathering, "g1", androidUA))
	assert.Equal(t, "https://gruby.app/gathering/g1", svc.RedirectURL(KindGathering, "g1", desktopUA))
}
