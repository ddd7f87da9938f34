package matchers

import (
	"regexp"
	"strconv"

	"github.com/bageshwar/rankforge-sub000/internal/events"
)

// attackPattern: `"A<...>" [x y z] attacked "B<...>" [x y z] with "glock"
// (damage "27") (damage_armor "3") (health "46") (armor "92") (hitgroup "stomach")`.
// Remaining health and armor are matched but not modeled; damage values
// and hitgroup are passed through uninterpreted.
var attackPattern = regexp.MustCompile(
	`^` + playerToken + ` ` + coordToken + ` attacked ` + playerToken + ` ` + coordToken +
		` with "([^"]+)" \(damage "(\d+)"\) \(damage_armor "(\d+)"\) \(health "\d+"\) \(armor "\d+"\) \(hitgroup "([^"]+)"\)$`,
)

// AttackMatcher matches damage lines. It must run after KillMatcher in
// the priority order: the shared leading player/coordinate shape means
// a looser attack pattern would otherwise shadow kills.
type AttackMatcher struct{}

func (AttackMatcher) Match(line Line) (events.Event, bool) {
	m := attackPattern.FindStringSubmatch(line.Payload)
	if m == nil {
		return nil, false
	}
	damage, _ := strconv.Atoi(m[16])
	armorDamage, _ := strconv.Atoi(m[17])
	return events.AttackEvent{
		Timestamp:   line.Time,
		Attacker:    player(m[1], m[2], m[3], m[4]),
		AttackerPos: position(m[5], m[6], m[7]),
		Victim:      player(m[8], m[9], m[10], m[11]),
		VictimPos:   position(m[12], m[13], m[14]),
		Weapon:      m[15],
		Damage:      damage,
		ArmorDamage: armorDamage,
		Hitgroup:    m[18],
	}, true
}
