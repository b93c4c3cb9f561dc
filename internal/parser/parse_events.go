package parser

import (
	"fmt"

	"github.com/raidstats/zonetracker/pkg/core"
)

// ParseDamage parses ":DAMAGE:|weapon|amount".
func (p *Parser) ParseDamage(data []string) (core.DamageInfo, error) {
	var dmg core.DamageInfo

	data, err := prepare(":DAMAGE:", data, 2)
	if err != nil {
		return dmg, err
	}

	dmg.Weapon = data[0]
	dmg.Amount, err = parseFinite(data[1])
	if err != nil {
		return dmg, fmt.Errorf("error parsing damage amount: %w", err)
	}
	return dmg, nil
}

// ParseKill parses ":KILL:|weapon|amount|role|distance|bodyPart".
func (p *Parser) ParseKill(data []string) (ParsedKill, error) {
	var kill ParsedKill

	data, err := prepare(":KILL:", data, 5)
	if err != nil {
		return kill, err
	}

	kill.Damage.Weapon = data[0]
	kill.Damage.Amount, err = parseFinite(data[1])
	if err != nil {
		return kill, fmt.Errorf("error parsing kill damage: %w", err)
	}
	kill.Role = data[2]
	kill.Distance, err = parseFinite(data[3])
	if err != nil {
		return kill, fmt.Errorf("error parsing kill distance: %w", err)
	}
	kill.BodyPart = data[4]
	return kill, nil
}

// ParseItem parses ":ITEM:ADD:" and ":ITEM:UPDATE:" arguments
// "id|templateId|amount|color". Color is optional.
func (p *Parser) ParseItem(data []string) (core.Item, error) {
	var item core.Item

	data, err := prepare(":ITEM:", data, 3)
	if err != nil {
		return item, err
	}

	item.ID = data[0]
	item.TemplateID = data[1]
	amount, err := parseIntFromFloat(data[2])
	if err != nil {
		return item, fmt.Errorf("error parsing item amount: %w", err)
	}
	item.Amount = int(amount)
	if len(data) > 3 {
		item.Color = data[3]
	}
	return item, nil
}

// ParseItemRemoved parses ":ITEM:REMOVE:|id".
func (p *Parser) ParseItemRemoved(data []string) (core.Item, error) {
	data, err := prepare(":ITEM:REMOVE:", data, 1)
	if err != nil {
		return core.Item{}, err
	}
	return core.Item{ID: data[0]}, nil
}

// ParseContainer parses ":CONTAINER:|ownerId|templateId".
func (p *Parser) ParseContainer(data []string) (core.Container, error) {
	data, err := prepare(":CONTAINER:", data, 2)
	if err != nil {
		return core.Container{}, err
	}
	if data[0] == "" {
		return core.Container{}, fmt.Errorf("container: empty owner id")
	}
	return core.Container{OwnerID: data[0], TemplateID: data[1]}, nil
}
