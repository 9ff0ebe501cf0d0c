package pen

import (
	"io"
	"strconv"
	"strings"

	"github.com/chazu/penmap/pkg/diag"
	"github.com/chazu/penmap/pkg/level"
)

// Option configures Parse.
type Option func(*parser)

// WithColours sets the light colours used when neither a light nor its room
// names one.
func WithColours(c map[level.LightOn]level.Colour) Option {
	return func(p *parser) { p.colours = c }
}

// Parse reads a complete pen file. name labels the resulting map.
func Parse(name string, r io.Reader, opts ...Option) (*level.Map, error) {
	toks, err := Lex(r)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, m: level.NewMap(name)}
	for _, o := range opts {
		o(p)
	}
	if err := p.file(); err != nil {
		return nil, err
	}
	return p.m, nil
}

// ParseString is Parse over an in-memory source.
func ParseString(name, src string, opts ...Option) (*level.Map, error) {
	return Parse(name, strings.NewReader(src), opts...)
}

type parser struct {
	toks    []Token
	pos     int
	m       *level.Map
	room    *level.Room
	colours map[level.LightOn]level.Colour
}

// lightColour picks the room default for on, then the global one.
func (p *parser) lightColour(on level.LightOn) level.Colour {
	if c, ok := p.room.Colours[on]; ok {
		return c
	}
	if c, ok := p.colours[on]; ok {
		return c
	}
	return level.DefaultColour
}

func (p *parser) peek() Token {
	return p.toks[p.pos]
}

func (p *parser) next() Token {
	t := p.toks[p.pos]
	if t.Text != EOF {
		p.pos++
	}
	return t
}

func (p *parser) is(words ...string) bool {
	t := p.peek().Text
	for _, w := range words {
		if t == w {
			return true
		}
	}
	return false
}

func (p *parser) expect(word string) error {
	t := p.next()
	if t.Text != word {
		return diag.Linef(t.Line, "expecting %s and seen %s", word, t.Text)
	}
	return nil
}

// word consumes any token other than end of input.
func (p *parser) word(what string) (string, error) {
	t := p.next()
	if t.Text == EOF {
		return "", diag.Linef(t.Line, "expecting %s and reached the end of the file", what)
	}
	return t.Text, nil
}

// isInt reports whether the next token is an integer.
func (p *parser) isInt() bool {
	_, err := strconv.Atoi(p.peek().Text)
	return err == nil
}

func (p *parser) integer(what string) (int, error) {
	t := p.next()
	n, err := strconv.Atoi(t.Text)
	if err != nil {
		return 0, diag.Linef(t.Line, "expecting %s and seen %s", what, t.Text)
	}
	return n, nil
}

func (p *parser) ints(whats ...string) ([]int, error) {
	out := make([]int, len(whats))
	for i, w := range whats {
		n, err := p.integer(w)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func (p *parser) point(what string) (level.Point, error) {
	v, err := p.ints("the x coordinate of "+what, "the y coordinate of "+what)
	if err != nil {
		return level.Point{}, err
	}
	return level.Point{X: v[0], Y: v[1]}, nil
}

// file := roomDesc { roomDesc } "END."
func (p *parser) file() error {
	if !p.is("ROOM") {
		t := p.peek()
		return diag.Linef(t.Line, "expecting ROOM and seen %s", t.Text)
	}
	for p.is("ROOM") {
		if err := p.roomDesc(); err != nil {
			return err
		}
	}
	return p.expect("END.")
}

var roomItems = []string{
	"DOOR", "WALL", "AMMO", "WEAPON", "LIGHT", "INSIDE", "MONSTER",
	"SPAWN", "DEFAULT", "SOUND", "LABEL", "PLINTH",
}

// roomDesc := "ROOM" int { item } "END"
func (p *parser) roomDesc() error {
	start := p.next()
	id, err := p.integer("a room number after ROOM")
	if err != nil {
		return err
	}
	if id < 0 {
		return diag.Linef(start.Line, "room number %d must not be negative", id)
	}
	if p.m.Get(level.RoomID(id)) != nil {
		return diag.Linef(start.Line, "room %d has already been defined", id)
	}
	p.room = level.NewRoom(level.RoomID(id), start.Line)

	for p.is(roomItems...) {
		var err error
		switch p.peek().Text {
		case "DOOR":
			err = p.doorDesc()
		case "WALL":
			err = p.wallDesc()
		case "AMMO":
			err = p.ammoDesc()
		case "WEAPON":
			err = p.weaponDesc()
		case "LIGHT":
			err = p.lightDesc()
		case "INSIDE":
			err = p.insideDesc()
		case "MONSTER":
			err = p.monsterDesc()
		case "SPAWN":
			err = p.spawnDesc()
		case "DEFAULT":
			err = p.defaultDesc()
		case "SOUND":
			err = p.soundDesc()
		case "LABEL":
			err = p.labelDesc()
		case "PLINTH":
			err = p.plinthDesc()
		}
		if err != nil {
			return err
		}
	}
	if err := p.expect("END"); err != nil {
		return err
	}
	return p.m.Add(p.room)
}

func (p *parser) segment(what string) (level.Segment, error) {
	v, err := p.ints("the first integer of "+what, "the second integer of "+what,
		"the third integer of "+what, "the fourth integer of "+what)
	if err != nil {
		return level.Segment{}, err
	}
	return level.Seg(v[0], v[1], v[2], v[3]), nil
}

// wallDesc := "WALL" coords { coords }
func (p *parser) wallDesc() error {
	p.next()
	for first := true; first || p.isInt(); first = false {
		s, err := p.segment("a wall")
		if err != nil {
			return err
		}
		p.room.Walls = append(p.room.Walls, s)
	}
	return nil
}

// doorDesc := "DOOR" doorCoords { doorCoords }
// doorCoords := coords "STATUS" status "LEADS" "TO" int
func (p *parser) doorDesc() error {
	p.next()
	for first := true; first || p.isInt(); first = false {
		line := p.peek().Line
		s, err := p.segment("a door")
		if err != nil {
			return err
		}
		if err := p.expect("STATUS"); err != nil {
			return err
		}
		st, err := p.status()
		if err != nil {
			return err
		}
		if err := p.expect("LEADS"); err != nil {
			return err
		}
		if err := p.expect("TO"); err != nil {
			return err
		}
		to, err := p.integer("the room a door leads to")
		if err != nil {
			return err
		}
		p.room.Doors = append(p.room.Doors, level.Door{Seg: s, Status: st, LeadsTo: level.RoomID(to), Line: line})
	}
	return nil
}

func (p *parser) status() (level.DoorStatus, error) {
	t := p.next()
	switch t.Text {
	case "OPEN":
		return level.DoorOpen, nil
	case "CLOSED":
		return level.DoorClosed, nil
	case "SECRET":
		return level.DoorSecret, nil
	}
	return 0, diag.Linef(t.Line, "expecting OPEN, CLOSED or SECRET after STATUS and seen %s", t.Text)
}

// insideDesc := "INSIDE" "AT" x y
func (p *parser) insideDesc() error {
	t := p.next()
	if err := p.expect("AT"); err != nil {
		return err
	}
	pt, err := p.point("an inside declaration")
	if err != nil {
		return err
	}
	if p.room.Inside != nil {
		return diag.Linef(t.Line, "room %d already has an inside point at %s", p.room.ID, *p.room.Inside)
	}
	p.room.Inside = &pt
	return nil
}

// lightDesc := "LIGHT" "AT" x y [ "COLOUR" r g b ] [ "ON" word ]
func (p *parser) lightDesc() error {
	p.next()
	if err := p.expect("AT"); err != nil {
		return err
	}
	pt, err := p.point("a light")
	if err != nil {
		return err
	}
	var col *level.Colour
	if p.is("COLOUR") {
		p.next()
		c, err := p.colour()
		if err != nil {
			return err
		}
		col = &c
	}
	on := level.OnMid
	if p.is("ON") {
		p.next()
		t := p.next()
		o, ok := level.ParseLightOn(t.Text)
		if !ok {
			return diag.Linef(t.Line, "expecting MID, FLOOR or CEILING after ON and seen %s", t.Text)
		}
		on = o
	}
	l := level.Light{At: pt, On: on, Colour: p.lightColour(on)}
	if col != nil {
		l.Colour = *col
	}
	p.room.Lights = append(p.room.Lights, l)
	return nil
}

func (p *parser) colour() (level.Colour, error) {
	v, err := p.ints("the red colour component", "the green colour component", "the blue colour component")
	if err != nil {
		return level.Colour{}, err
	}
	return level.Colour{R: v[0], G: v[1], B: v[2]}, nil
}

// ammoDesc := "AMMO" word "AMOUNT" int "AT" x y
func (p *parser) ammoDesc() error {
	p.next()
	kind, err := p.word("an ammo kind")
	if err != nil {
		return err
	}
	if err := p.expect("AMOUNT"); err != nil {
		return err
	}
	n, err := p.integer("an amount of ammo")
	if err != nil {
		return err
	}
	if err := p.expect("AT"); err != nil {
		return err
	}
	pt, err := p.point("the ammo")
	if err != nil {
		return err
	}
	p.room.Ammo = append(p.room.Ammo, level.Ammo{Kind: kind, Amount: n, At: pt})
	return nil
}

// weaponDesc := "WEAPON" int "AT" x y
func (p *parser) weaponDesc() error {
	p.next()
	t := p.peek()
	n, err := p.integer("a weapon number")
	if err != nil {
		return err
	}
	if _, ok := level.WeaponClass(n); !ok {
		return diag.Linef(t.Line, "unknown weapon number %d", n)
	}
	if err := p.expect("AT"); err != nil {
		return err
	}
	pt, err := p.point("a weapon")
	if err != nil {
		return err
	}
	p.room.Weapons = append(p.room.Weapons, level.Weapon{Number: n, At: pt})
	return nil
}

// monsterDesc := "MONSTER" word "AT" x y
func (p *parser) monsterDesc() error {
	p.next()
	kind, err := p.word("a monster type")
	if err != nil {
		return err
	}
	if err := p.expect("AT"); err != nil {
		return err
	}
	pt, err := p.point("a monster")
	if err != nil {
		return err
	}
	p.room.Monsters = append(p.room.Monsters, level.Monster{Kind: kind, At: pt})
	return nil
}

// spawnDesc := "SPAWN" "PLAYER" "AT" x y
func (p *parser) spawnDesc() error {
	p.next()
	if err := p.expect("PLAYER"); err != nil {
		return err
	}
	if err := p.expect("AT"); err != nil {
		return err
	}
	pt, err := p.point("a player spawn")
	if err != nil {
		return err
	}
	p.room.Spawns = append(p.room.Spawns, pt)
	return nil
}

// labelDesc := "LABEL" "AT" x y word
func (p *parser) labelDesc() error {
	p.next()
	if err := p.expect("AT"); err != nil {
		return err
	}
	pt, err := p.point("a label")
	if err != nil {
		return err
	}
	text, err := p.word("the label text")
	if err != nil {
		return err
	}
	p.room.Labels = append(p.room.Labels, level.Label{Text: text, At: pt})
	return nil
}

// soundDesc := "SOUND" "AT" x y word { "VOLUME" int | "LOOPING" | "WAIT" int }
func (p *parser) soundDesc() error {
	p.next()
	if err := p.expect("AT"); err != nil {
		return err
	}
	pt, err := p.point("a sound")
	if err != nil {
		return err
	}
	file, err := p.word("a sound shader")
	if err != nil {
		return err
	}
	s := level.Sound{File: file, At: pt}
	for p.is("VOLUME", "LOOPING", "WAIT") {
		switch p.next().Text {
		case "VOLUME":
			if s.Volume, err = p.integer("an integer after the VOLUME keyword"); err != nil {
				return err
			}
		case "LOOPING":
			s.Looping = true
		case "WAIT":
			if s.Wait, err = p.integer("an integer after the WAIT keyword"); err != nil {
				return err
			}
		}
	}
	p.room.Sounds = append(p.room.Sounds, s)
	return nil
}

// plinthDesc := "PLINTH" x y height
func (p *parser) plinthDesc() error {
	p.next()
	v, err := p.ints("the x axis of a plinth", "the y axis of a plinth", "the height of a plinth")
	if err != nil {
		return err
	}
	p.room.Plinths = append(p.room.Plinths, level.Plinth{At: level.Point{X: v[0], Y: v[1]}, Height: v[2]})
	return nil
}

var (
	colourKeys  = map[string]level.LightOn{"FLOOR": level.OnFloor, "MID": level.OnMid, "CEILING": level.OnCeiling}
	textureKeys = map[string]string{"CEILING": "ceiling", "FLOOR": "floor", "WALL": "wall", "PLINTH": "plinth"}
)

// defaultDesc := "DEFAULT" ( "COLOUR" on r g b | "TEXTURE" kind word )
func (p *parser) defaultDesc() error {
	p.next()
	t := p.next()
	switch t.Text {
	case "COLOUR":
		k := p.next()
		on, ok := colourKeys[k.Text]
		if !ok {
			return diag.Linef(k.Line, "expecting FLOOR, MID or CEILING after DEFAULT COLOUR and seen %s", k.Text)
		}
		c, err := p.colour()
		if err != nil {
			return err
		}
		p.room.Colours[on] = c
	case "TEXTURE":
		k := p.next()
		name, ok := textureKeys[k.Text]
		if !ok {
			return diag.Linef(k.Line, "expecting FLOOR, WALL, CEILING or PLINTH after DEFAULT TEXTURE and seen %s", k.Text)
		}
		tex, err := p.word("a texture name")
		if err != nil {
			return err
		}
		p.room.Textures[name] = tex
	default:
		return diag.Linef(t.Line, "expecting COLOUR or TEXTURE after DEFAULT and seen %s", t.Text)
	}
	return nil
}
