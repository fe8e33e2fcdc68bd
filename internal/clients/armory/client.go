package armory

//go:generate mockgen -destination=mock/mock_client.go -package=mockarmory -source=client.go

import (
	"net/http"
	"strings"

	"github.com/fadedpez/dnd5e-api/clients/dnd5e"
	apiEntities "github.com/fadedpez/dnd5e-api/entities"

	"github.com/tavernkeep/gamemaster/internal/dice"
	"github.com/tavernkeep/gamemaster/internal/entities"
	apperr "github.com/tavernkeep/gamemaster/internal/errors"
)

// Client resolves weapon names against the hosted D&D 5e equipment API.
// Used for weapon overrides passed by name in combat actions.
type Client interface {
	// GetWeapon looks up a weapon by display name or API key
	GetWeapon(name string) (*entities.Weapon, error)
}

type client struct {
	api dnd5e.Interface
}

// Config holds configuration for the armory client
type Config struct {
	HTTPClient *http.Client
}

// New creates a new armory client
func New(cfg *Config) (Client, error) {
	if cfg == nil {
		return nil, apperr.InvalidArgument("cfg cannot be nil")
	}

	api, err := dnd5e.NewDND5eAPI(&dnd5e.DND5eAPIConfig{
		Client: cfg.HTTPClient,
	})
	if err != nil {
		return nil, err
	}

	return &client{
		api: api,
	}, nil
}

// GetWeapon implements Client.GetWeapon
func (c *client) GetWeapon(name string) (*entities.Weapon, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperr.InvalidArgument("weapon name is required")
	}

	key := weaponKey(name)

	response, err := c.api.GetEquipment(key)
	if err != nil {
		return nil, apperr.Wrapf(err, "failed to look up weapon '%s'", key)
	}

	apiWeapon, ok := response.(*apiEntities.Weapon)
	if !ok {
		return nil, apperr.NotFoundf("equipment '%s' is not a weapon", key)
	}

	return apiWeaponToWeapon(apiWeapon)
}

// weaponKey normalizes a display name to an API key, e.g.
// "Crossbow, Light" -> "crossbow-light"
func weaponKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, ",", "")
	key = strings.ReplaceAll(key, " ", "-")
	return key
}

func apiWeaponToWeapon(input *apiEntities.Weapon) (*entities.Weapon, error) {
	if input.Damage == nil {
		return nil, apperr.NotFoundf("weapon '%s' has no damage data", input.Key)
	}

	notation := input.Damage.DamageDice
	if _, _, _, err := dice.ParseNotation(notation); err != nil {
		return nil, apperr.Wrapf(err, "weapon '%s' has unparseable damage dice", input.Key)
	}

	// Ranged weapons attack with dexterity, everything else strength
	ability := entities.AbilityStrength
	if input.WeaponRange == "Ranged" {
		ability = entities.AbilityDexterity
	}

	damageType := entities.DamageBludgeoning
	if input.Damage.DamageType != nil && input.Damage.DamageType.Key != "" {
		damageType = entities.DamageType(input.Damage.DamageType.Key)
	}

	return &entities.Weapon{
		Name:       input.Name,
		Damage:     notation,
		DamageType: damageType,
		Ability:    ability,
	}, nil
}
