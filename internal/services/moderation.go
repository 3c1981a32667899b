package services

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/AnshRaj112/agora-backend/internal/database"
	"github.com/AnshRaj112/agora-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ScreenCategory names a class of content the filter looks for.
type ScreenCategory string

const (
	CategoryThreat   ScreenCategory = "threat"
	CategorySelfHarm ScreenCategory = "self_harm"
)

var threatWords = []string{
	"rape", "kill", "murder", "assault", "attack", "stab", "shoot", "strangle",
	"slaughter", "massacre", "execute", "threat", "revenge",
}

var selfHarmWords = []string{
	"suicide", "kill myself", "end my life", "take my life", "self harm",
	"cut myself", "hurt myself", "want to die", "better off dead", "unalive",
}

// lookalikes maps common obfuscations back to letters.
var lookalikes = strings.NewReplacer(
	"@", "a", "4", "a", "3", "e", "!", "i", "1", "i", "0", "o",
	"$", "s", "5", "s", "7", "t", "+", "t",
	"а", "a", "е", "e", "і", "i", "о", "o", "р", "p",
)

var whitespace = regexp.MustCompile(`\s+`)

// CleanText lowercases, undoes lookalike substitutions, drops non-letters and
// collapses repeated letters ("k1lll" -> "kil").
func CleanText(text string) string {
	cleaned := lookalikes.Replace(strings.ToLower(text))

	var b strings.Builder
	var last rune
	for _, r := range cleaned {
		if !unicode.IsLetter(r) {
			r = ' '
		} else if r == last {
			continue
		}
		b.WriteRune(r)
		last = r
	}
	return strings.TrimSpace(whitespace.ReplaceAllString(b.String(), " "))
}

// collapse applies the repeated-letter rule to a dictionary entry so that
// words like "kill" compare against cleaned text as "kil".
func collapse(word string) string {
	var b strings.Builder
	var last rune
	for _, r := range word {
		if unicode.IsLetter(r) && r == last {
			continue
		}
		b.WriteRune(r)
		last = r
	}
	return b.String()
}

// ContainsConfirmedWord reports which dictionary entries appear in cleaned.
// Single words must match a whole word ("skill" is not "kill"); phrases match
// as substrings.
func ContainsConfirmedWord(cleaned string, dictionary []string) []string {
	words := strings.Fields(cleaned)
	var matched []string
	for _, entry := range dictionary {
		canon := collapse(entry)
		if strings.Contains(canon, " ") {
			if strings.Contains(cleaned, canon) {
				matched = append(matched, entry)
			}
			continue
		}
		for _, w := range words {
			if w == canon {
				matched = append(matched, entry)
				break
			}
		}
	}
	return matched
}

// ScreenResult is the outcome of screening a piece of user content.
type ScreenResult struct {
	Categories []ScreenCategory
	Matched    []string
}

// Flagged reports whether anything matched.
func (s ScreenResult) Flagged() bool { return len(s.Matched) > 0 }

// ScreenContent runs text through the keyword filter.
func ScreenContent(text string) ScreenResult {
	cleaned := CleanText(text)
	var res ScreenResult
	if m := ContainsConfirmedWord(cleaned, threatWords); len(m) > 0 {
		res.Categories = append(res.Categories, CategoryThreat)
		res.Matched = append(res.Matched, m...)
	}
	if m := ContainsConfirmedWord(cleaned, selfHarmWords); len(m) > 0 {
		res.Categories = append(res.Categories, CategorySelfHarm)
		res.Matched = append(res.Matched, m...)
	}
	return res
}

// AutoReport files a system report (no reporter) for flagged content so it
// shows up in the admin queue. Failures are logged, not returned.
func AutoReport(ctx context.Context, target models.TargetType, id primitive.ObjectID, res ScreenResult) {
	if !res.Flagged() {
		return
	}
	cats := make([]string, len(res.Categories))
	for i, c := range res.Categories {
		cats[i] = string(c)
	}
	report := models.Report{
		ID:         primitive.NewObjectID(),
		TargetType: target,
		TargetID:   id,
		Reason:     "auto: " + strings.Join(cats, ","),
		Details:    strings.Join(res.Matched, ", "),
		Status:     models.ReportPending,
		CreatedAt:  time.Now(),
	}
	if _, err := database.DB.Collection(database.ReportsCollection).InsertOne(ctx, report); err != nil {
		zap.L().Error("auto report insert failed", zap.Error(err), zap.String("target", id.Hex()))
	}
}
