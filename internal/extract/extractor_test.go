package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kapwire/kapwire/internal/config"
	"github.com/kapwire/kapwire/internal/feed"
	"github.com/kapwire/kapwire/internal/hash/sha256"
)

func testFeedConfig() config.FeedConfig {
	return config.FeedConfig{
		URL:        "https://example.com/feed",
		Marker:     "KAP",
		CodeMinLen: 3,
		CodeMaxLen: 6,
		MaxCodes:   2,
		BannedCodes: []string{
			"AKIS", "ILE", "DUN", "BUGUN", "FINTABLES", "BULTEN",
			"GUNLUK", "INFO", "PAY", "HISSE", "KAP",
		},
		MinContentLen: 30,
		BoilerplatePhrases: []string{
			"yatırım tavsiyesi değildir",
			"yasal uyarı",
			"kamunun bilgisine",
		},
		NonNewsPatterns: []string{`(?i)günlük bülten`},
	}
}

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	policy, err := NewPolicy(testFeedConfig())
	require.NoError(t, err)
	return New(policy, sha256.New(), zap.NewNop())
}

func blocks(texts ...string) []feed.RawBlock {
	out := make([]feed.RawBlock, 0, len(texts))
	for i, text := range texts {
		out = append(out, feed.RawBlock{Index: i, Text: text})
	}
	return out
}

func TestExtract_SingleDisclosure(t *testing.T) {
	t.Parallel()

	e := newTestExtractor(t)
	items := e.Extract(blocks(
		"KAP • TERA Şirket ortaklığı için yeni bir anlaşma imzaladı. Bugün 14:05",
	))

	require.Len(t, items, 1)
	require.Equal(t, []string{"TERA"}, items[0].Codes)
	require.Equal(t, "Şirket ortaklığı için yeni bir anlaşma imzaladı.", items[0].Content)
	require.Len(t, items[0].ID, 16)
	require.NotEmpty(t, items[0].Raw)
}

func TestExtract_IDIgnoresRenderNoise(t *testing.T) {
	t.Parallel()

	e := newTestExtractor(t)
	first := e.Extract(blocks(
		"KAP • TERA   Şirket ortaklığı için   yeni bir anlaşma imzaladı. Bugün 14:05",
	))
	second := e.Extract(blocks(
		"KAP • TERA Şirket ortaklığı için yeni bir anlaşma imzaladı. Dün 09:41",
	))

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	require.Equal(t, first[0].ID, second[0].ID)
	require.Equal(t, first[0].Content, second[0].Content)
}

func TestExtract_BannedTokenIsNotACode(t *testing.T) {
	t.Parallel()

	e := newTestExtractor(t)
	items := e.Extract(blocks(
		"KAP • BUGUN piyasada öne çıkan gelişmeler ve şirket haberleri burada",
	))
	require.Empty(t, items)
}

func TestExtract_TwoCodes(t *testing.T) {
	t.Parallel()

	e := newTestExtractor(t)
	items := e.Extract(blocks(
		"KAP • TERA/ASELS İki şirket arasında iş birliği protokolü imzalandı.",
	))

	require.Len(t, items, 1)
	require.Equal(t, []string{"TERA", "ASELS"}, items[0].Codes)
	require.Equal(t, "İki şirket arasında iş birliği protokolü imzalandı.", items[0].Content)
}

func TestExtract_CapitalizedWordIsNotACode(t *testing.T) {
	t.Parallel()

	e := newTestExtractor(t)
	items := e.Extract(blocks(
		"KAP • TERA Şirket yeni bir üretim tesisi için arsa satın aldı.",
	))

	require.Len(t, items, 1)
	require.Equal(t, []string{"TERA"}, items[0].Codes)
}

func TestExtract_NoMarkerDiscarded(t *testing.T) {
	t.Parallel()

	e := newTestExtractor(t)
	items := e.Extract(blocks(
		"BIST • TERA Endeks güne yükselişle başladı, bankacılık öne çıktı.",
	))
	require.Empty(t, items)
}

func TestExtract_ShortContentDiscarded(t *testing.T) {
	t.Parallel()

	e := newTestExtractor(t)
	items := e.Extract(blocks("KAP • TERA Kısa duyuru."))
	require.Empty(t, items)
}

func TestExtract_BoilerplateDiscarded(t *testing.T) {
	t.Parallel()

	e := newTestExtractor(t)
	items := e.Extract(blocks(
		"KAP • TERA Bu içerik yatırım tavsiyesi değildir, yalnızca bilgilendirme amaçlıdır.",
	))
	require.Empty(t, items)
}

func TestExtract_DigestHeaderDiscarded(t *testing.T) {
	t.Parallel()

	e := newTestExtractor(t)
	items := e.Extract(blocks(
		"KAP • TERA Günlük Bülten yayında, bugünün öne çıkan başlıklarını derledik.",
	))
	require.Empty(t, items)
}

func TestExtract_OrderPreservedAndDeduplicated(t *testing.T) {
	t.Parallel()

	e := newTestExtractor(t)
	items := e.Extract(blocks(
		"KAP • AAA Birinci şirket bugün yeni bir yatırım kararı açıkladı.",
		"KAP • BBB İkinci şirket sermaye artırımı başvurusunda bulundu.",
		"KAP • AAA Birinci şirket bugün yeni bir yatırım kararı açıkladı.",
	))

	require.Len(t, items, 2)
	require.Equal(t, []string{"AAA"}, items[0].Codes)
	require.Equal(t, []string{"BBB"}, items[1].Codes)
}
