package narrative

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tavernkeep/gamemaster/internal/entities"
)

// Shop blocks are delimited sections the model embeds in narration when
// the party enters a shop. The opening marker is required; the closing
// marker is optional and the block then runs to the first blank line
// after the item separator, or to the end of the text.
const (
	shopMarker = "[SHOP_UPDATE]"
	shopCloser = "[/SHOP_UPDATE]"

	shopSeparator = "---"
)

// ShopUpdate is a parsed shop block, ready to replace a room's shop
// state wholesale
type ShopUpdate struct {
	NPCName     string
	Personality entities.ShopPersonality
	Reputation  int
	Items       []entities.ShopItem
}

var (
	priceRe   = regexp.MustCompile(`\(\s*(\d+)\s*[a-zA-Z ]*\)\s*$`)
	bracketRe = regexp.MustCompile(`\[([^\[\]]+)\]\s*$`)
	healingRe = regexp.MustCompile(`(?i)restores\s+(\d+d\d+(?:\s*\+\s*\d+)?)\s*(?:hp|hit points)`)
	armorRe   = regexp.MustCompile(`\+\s*(\d+)\s*(?:AC|ac|armor)`)
	diceRe    = regexp.MustCompile(`\d+d\d+(?:\s*\+\s*\d+)?`)
)

// ExtractShopBlock finds an optional shop block in narration text,
// parses it, and strips it from the player-visible text. The block is
// excised even when it parses to nothing; a malformed block must never
// leak into narration. When no marker is present the text passes
// through untouched.
//
// A parse producing zero items returns a nil update.
func ExtractShopBlock(text string) (*ShopUpdate, string) {
	lines := strings.Split(text, "\n")

	start := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == shopMarker {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, text
	}

	// Find where the block ends. Prefer the explicit closer; without
	// one, stop at the first blank line after the separator.
	end := len(lines)
	sawSeparator := false
	for i := start + 1; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == shopCloser {
			end = i + 1
			break
		}
		if trimmed == shopSeparator {
			sawSeparator = true
			continue
		}
		if sawSeparator && trimmed == "" {
			end = i
			break
		}
	}

	update := parseShopBlock(lines[start+1 : end])

	cleaned := append([]string{}, lines[:start]...)
	cleaned = append(cleaned, lines[end:]...)

	return update, strings.TrimSpace(strings.Join(cleaned, "\n"))
}

func parseShopBlock(lines []string) *ShopUpdate {
	update := &ShopUpdate{
		Personality: entities.PersonalityNeutral,
	}

	inItems := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == shopCloser {
			continue
		}
		if trimmed == shopSeparator {
			inItems = true
			continue
		}

		if !inItems {
			parseShopMetadata(update, trimmed)
			continue
		}

		if item, ok := parseShopItem(trimmed); ok {
			update.Items = append(update.Items, item)
		}
	}

	if len(update.Items) == 0 {
		return nil
	}
	return update
}

func parseShopMetadata(update *ShopUpdate, line string) {
	key, value, found := strings.Cut(line, ":")
	if !found {
		return
	}
	value = strings.TrimSpace(value)

	switch strings.ToLower(strings.TrimSpace(key)) {
	case "npc", "npc name", "merchant":
		update.NPCName = value
	case "personality":
		switch entities.ShopPersonality(strings.ToLower(value)) {
		case entities.PersonalityFriendly:
			update.Personality = entities.PersonalityFriendly
		case entities.PersonalityHostile:
			update.Personality = entities.PersonalityHostile
		default:
			update.Personality = entities.PersonalityNeutral
		}
	case "reputation":
		if rep, err := strconv.Atoi(value); err == nil {
			update.Reputation = rep
		}
	}
}

// parseShopItem parses one inventory line of the form
// "Name — Description (N gold) [rarity, quality]". Everything after the
// name is optional and defaults gracefully.
func parseShopItem(line string) (entities.ShopItem, bool) {
	item := entities.ShopItem{
		Rarity:  entities.RarityCommon,
		Quality: entities.QualityNormal,
		Stock:   1,
	}

	rest := line

	if match := bracketRe.FindStringSubmatch(rest); match != nil {
		item.Rarity, item.Quality = parseRarityQuality(match[1])
		rest = strings.TrimSpace(strings.TrimSuffix(rest, match[0]))
	}

	if match := priceRe.FindStringSubmatch(rest); match != nil {
		if price, err := strconv.Atoi(match[1]); err == nil {
			item.Price = price
		}
		rest = strings.TrimSpace(strings.TrimSuffix(rest, match[0]))
	}

	name, description := splitNameDescription(rest)
	if name == "" {
		return entities.ShopItem{}, false
	}
	item.Name = name
	item.Description = description

	annotateItem(&item)

	return item, true
}

func parseRarityQuality(bracket string) (entities.ItemRarity, entities.ItemQuality) {
	rarity := entities.RarityCommon
	quality := entities.QualityNormal

	parts := strings.Split(bracket, ",")
	if len(parts) > 0 {
		switch entities.ItemRarity(strings.ToLower(strings.TrimSpace(parts[0]))) {
		case entities.RarityUncommon:
			rarity = entities.RarityUncommon
		case entities.RarityRare:
			rarity = entities.RarityRare
		case entities.RarityEpic:
			rarity = entities.RarityEpic
		case entities.RarityLegendary:
			rarity = entities.RarityLegendary
		}
	}
	if len(parts) > 1 {
		switch entities.ItemQuality(strings.ToLower(strings.TrimSpace(parts[1]))) {
		case entities.QualityPoor:
			quality = entities.QualityPoor
		case entities.QualityFine:
			quality = entities.QualityFine
		case entities.QualityMasterwork:
			quality = entities.QualityMasterwork
		}
	}

	return rarity, quality
}

// splitNameDescription splits on an em-dash, falling back to a spaced
// hyphen. Without either the whole line is the name.
func splitNameDescription(line string) (string, string) {
	for _, sep := range []string{"—", " - "} {
		if name, description, found := strings.Cut(line, sep); found {
			return strings.TrimSpace(name), strings.TrimSpace(description)
		}
	}
	return strings.TrimSpace(line), ""
}

// annotateItem extracts advisory combat attributes from the item
// description. Best-effort only; a miss leaves the annotation empty.
func annotateItem(item *entities.ShopItem) {
	description := item.Description

	if match := healingRe.FindStringSubmatch(description); match != nil {
		item.Healing = strings.ReplaceAll(match[1], " ", "")
		// Keep the healing dice from also matching as damage
		description = strings.Replace(description, match[0], "", 1)
	}

	if match := armorRe.FindStringSubmatch(description); match != nil {
		if bonus, err := strconv.Atoi(match[1]); err == nil {
			item.ArmorBonus = bonus
		}
	}

	if match := diceRe.FindString(description); match != "" {
		item.Damage = strings.ReplaceAll(match, " ", "")
	}
}
