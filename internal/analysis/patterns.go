package analysis

import "regexp"

// Pattern registry for the signal analyzer. Everything here is compiled or
// assembled once at init so the detector functions stay pure and cheap.

var negativeWords = []string{
	"hate", "awful", "terrible", "worst", "frustrated", "annoying", "annoyed",
	"disappointed", "sucks", "bad", "horrible", "useless", "waste", "expensive",
	"overpriced", "scam", "never", "can't", "won't", "failed", "broken", "bug",
	"problem", "issue", "error", "forgot", "missed", "late", "charged",
}

var positiveWords = []string{
	"love", "great", "awesome", "amazing", "excellent", "fantastic", "perfect",
	"helpful", "useful", "easy", "simple", "best", "good", "nice", "happy",
	"glad", "excited", "works", "solved", "fixed", "recommend", "worth",
}

// complaintPatterns cover subscription pain, frustration, and questions that
// signal intent to cancel
var complaintPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)forgot to cancel`),
	regexp.MustCompile(`(?i)auto.?renew`),
	regexp.MustCompile(`(?i)charged (me|again)`),
	regexp.MustCompile(`(?i)price increase`),
	regexp.MustCompile(`(?i)too (many|expensive)`),
	regexp.MustCompile(`(?i)waste of money`),
	regexp.MustCompile(`(?i)barely use`),
	regexp.MustCompile(`(?i)(didn't|didnt) (use|need)`),
	regexp.MustCompile(`(?i)why (am i|do i)`),
	regexp.MustCompile(`(?i)still paying`),
	regexp.MustCompile(`(?i)can't believe`),
	regexp.MustCompile(`(?i)seriously\?`),
	regexp.MustCompile(`(?i)how do i cancel`),
	regexp.MustCompile(`(?i)anyone know how`),
	regexp.MustCompile(`(?i)need (to|a) (cancel|unsubscribe)`),
}

// painTerms are substrings covering subscription, budget, and overwhelm vocabulary
var painTerms = []string{
	"subscription", "subscriptions", "cancel", "trial", "renew", "charge",
	"auto-renew", "forgot", "expensive", "price increase", "too much",
	"budget", "broke", "can't afford", "waste", "spending too much",
	"save money", "cut costs",
	"too many", "overwhelmed", "lost track", "forgot about",
}

// toolCatalog is the fixed set of consumer subscription/productivity services
// we recognize in tweet text
var toolCatalog = []string{
	"netflix", "spotify", "hulu", "disney+", "disney plus", "youtube premium",
	"amazon prime", "apple tv", "hbo max", "paramount+", "peacock",
	"notion", "figma", "canva", "adobe", "photoshop", "chatgpt", "claude",
	"github copilot", "midjourney", "dall-e", "grammarly",
	"dropbox", "icloud", "google drive", "onedrive", "office 365",
	"slack", "discord", "zoom", "calendly",
	"xbox game pass", "playstation plus", "nintendo switch online",
	"crunchyroll", "funimation", "audible", "kindle unlimited",
}

// collabBioTerms mark bios that belong to builders/creators in the indie
// maker space
var collabBioTerms = []string{
	"founder", "creator", "maker", "builder", "indie", "solopreneur",
	"building", "shipping", "launching", "saas", "startup",
	"developer", "dev", "coder", "programmer", "engineer",
	"designer", "ui", "ux", "product",
	"entrepreneur", "bootstrapped", "bootstrap",
}

var (
	hashtagPattern = regexp.MustCompile(`#(\w+)`)
	mentionPattern = regexp.MustCompile(`@(\w+)`)
)

// interestTaxonomy buckets hashtags into a small fixed set of topic clusters
var interestTaxonomy = []struct {
	name string
	tags map[string]bool
}{
	{"productivity", set("productivity", "notion", "tools", "workflow")},
	{"gaming", set("gaming", "gamer", "games", "xbox", "playstation")},
	{"design", set("design", "ui", "ux", "figma", "designer")},
	{"programming", set("coding", "developer", "programming", "javascript", "python")},
	{"personal finance", set("budget", "finance", "money", "saving", "frugal")},
}

// painLabels map complaint phrase families to the human-readable pain point
// labels surfaced in timeline insights
var painLabels = []struct {
	label string
	terms []string
}{
	{"Forgets to cancel subscriptions", []string{"forgot to cancel"}},
	{"Frustrated by price increases", []string{"price increase", "too expensive"}},
	{"Overwhelmed by number of subscriptions", []string{"too many"}},
	{"Surprised by auto-renewal charges", []string{"auto-renew", "charged"}},
}

func set(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, s := range items {
		m[s] = true
	}
	return m
}
