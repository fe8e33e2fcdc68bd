package entities

import "time"

// ShopPersonality is the merchant's disposition toward the party
type ShopPersonality string

const (
	PersonalityFriendly ShopPersonality = "friendly"
	PersonalityNeutral  ShopPersonality = "neutral"
	PersonalityHostile  ShopPersonality = "hostile"
)

// ItemRarity grades shop inventory
type ItemRarity string

const (
	RarityCommon    ItemRarity = "common"
	RarityUncommon  ItemRarity = "uncommon"
	RarityRare      ItemRarity = "rare"
	RarityEpic      ItemRarity = "epic"
	RarityLegendary ItemRarity = "legendary"
)

// ItemQuality grades item condition
type ItemQuality string

const (
	QualityPoor       ItemQuality = "poor"
	QualityNormal     ItemQuality = "normal"
	QualityFine       ItemQuality = "fine"
	QualityMasterwork ItemQuality = "masterwork"
)

// ShopItem is one line of a merchant's inventory. The combat
// annotations are advisory, extracted best-effort from the description.
type ShopItem struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       int         `json:"price"`
	Rarity      ItemRarity  `json:"rarity"`
	Quality     ItemQuality `json:"quality"`
	Stock       int         `json:"stock"`

	// Advisory combat annotations parsed from the description
	Damage     string `json:"damage,omitempty"`      // dice notation
	ArmorBonus int    `json:"armor_bonus,omitempty"` // +N AC
	Healing    string `json:"healing,omitempty"`     // dice notation
}

// Shop is the active merchant state for a room. Replaced wholesale when
// a new shop block is parsed from narration, never merged.
type Shop struct {
	RoomID      string          `json:"room_id"`
	NPCName     string          `json:"npc_name"`
	Personality ShopPersonality `json:"personality"`
	Reputation  int             `json:"reputation"`
	Items       []ShopItem      `json:"items"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
