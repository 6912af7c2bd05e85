// Package fallback produces responses locally when a generation request fails.
// Nothing here touches the network or returns an empty string.
package fallback

import (
	"errors"
	"math/rand"
	"net/http"
	"strings"
	"sync"

	"github.com/jgoulah/envirolink/internal/ai"
)

// Tips are general sustainability advice used when nothing better is available
var Tips = []string{
	"I can suggest some ways to reduce your carbon footprint: use public transportation, reduce meat consumption, minimize single-use plastics, and conserve energy at home by unplugging devices when not in use.",
	"Water conservation is important for sustainability. Try installing low-flow fixtures, fixing leaks promptly, collecting rainwater for plants, and taking shorter showers.",
	"For sustainable eating, consider choosing locally grown foods, reducing meat consumption, growing your own herbs, and composting food scraps to minimize waste.",
	"Renewable energy options include solar panels, wind turbines, geothermal systems, and hydroelectric power. Many utility companies also offer green energy programs you can opt into.",
	"To reduce waste, follow the principle of 'Refuse, Reduce, Reuse, Recycle, Rot' in that order. Refuse what you don't need, reduce consumption, reuse items, recycle properly, and compost organic waste.",
}

// Chat response prefixes, one per failure kind
const (
	OfflinePrefix      = "I'm currently operating in offline mode. "
	AuthPrefix         = "I'm having trouble accessing my knowledge base due to authentication issues. Here's some general advice instead: "
	ServerErrorPrefix  = "I encountered an error processing your request. Here's what I know about sustainability: "
	MalformedPrefix    = "I couldn't generate a specific response to your question. "
	ConnectivityPrefix = "I'm having connectivity issues right now. "
)

// Image analysis messages
const (
	VisionNoKey      = "Unable to analyze image. API key not available."
	VisionFailed     = "Failed to analyze the image. Please try again later."
	VisionUnclear    = "Unable to analyze the image. Please try again with a clearer photo."
	VisionError      = "An error occurred while analyzing the image. Please try again."
	VisionNotAnImage = "That file doesn't look like an image. Please choose a JPEG, PNG, WebP or HEIC photo."
)

// Picker chooses canned tips at random. It is safe for concurrent use.
type Picker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewPicker creates a picker; the same seed picks the same sequence
func NewPicker(seed int64) *Picker {
	return &Picker{rng: rand.New(rand.NewSource(seed))}
}

// Tip returns one of Tips, chosen uniformly
func (p *Picker) Tip() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Tips[p.rng.Intn(len(Tips))]
}

// ChatResponse explains the failure in err and follows it with a tip
func (p *Picker) ChatResponse(err error) string {
	return chatPrefix(err) + p.Tip()
}

func chatPrefix(err error) string {
	status := ai.StatusCode(err)
	switch {
	case errors.Is(err, ai.ErrCredentialMissing):
		return OfflinePrefix
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return AuthPrefix
	case status != 0 && strings.Contains(strings.ToLower(err.Error()), "api key"):
		return AuthPrefix
	case status != 0:
		return ServerErrorPrefix
	case errors.Is(err, ai.ErrMalformedResponse):
		return MalformedPrefix
	default:
		return ConnectivityPrefix
	}
}

// VisionResponse maps an image analysis failure to a display message
func VisionResponse(err error) string {
	switch {
	case errors.Is(err, ai.ErrCredentialMissing):
		return VisionNoKey
	case ai.StatusCode(err) != 0:
		return VisionFailed
	case errors.Is(err, ai.ErrMalformedResponse):
		return VisionUnclear
	case errors.Is(err, ai.ErrEmptyInput):
		return VisionNotAnImage
	default:
		return VisionError
	}
}
