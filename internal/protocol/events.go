package protocol

import (
	"encoding/json"

	"github.com/cjquines/cfish/internal/deck"
	"github.com/cjquines/cfish/internal/fish"
)

// Kind tags an event on the wire
type Kind string

const (
	KindAddUser           Kind = "add_user"
	KindRemoveUser        Kind = "remove_user"
	KindSeatAt            Kind = "seat_at"
	KindUnseatAt          Kind = "unseat_at"
	KindSetRules          Kind = "set_rules"
	KindStartGame         Kind = "start_game"
	KindStartGameResponse Kind = "start_game_response"
	KindAsk               Kind = "ask"
	KindAnswer            Kind = "answer"
	KindHandSizes         Kind = "hand_sizes"
	KindInitDeclare       Kind = "init_declare"
	KindDeclareMove       Kind = "declare_move"
	KindDeclare           Kind = "declare"
	KindDeclareResponse   Kind = "declare_response"
	KindPass              Kind = "pass"
)

// ServerOnly reports whether only the server may emit events of this kind
func (k Kind) ServerOnly() bool {
	switch k {
	case KindAddUser, KindRemoveUser, KindStartGameResponse, KindHandSizes, KindDeclareResponse:
		return true
	}
	return false
}

// Event is one engine action or server result. The set is closed: every
// implementation lives in this file.
type Event interface {
	Kind() Kind
}

// AddUser announces a user joining the room
type AddUser struct {
	User fish.UserID `json:"user"`
}

// RemoveUser announces a user leaving the room
type RemoveUser struct {
	User fish.UserID `json:"user"`
}

type SeatAt struct {
	User fish.UserID `json:"user"`
	Seat fish.Seat   `json:"seat"`
}

type UnseatAt struct {
	Seat fish.Seat `json:"seat"`
}

type SetRules struct {
	User  fish.UserID `json:"user"`
	Rules fish.Rules  `json:"rules"`
}

type StartGame struct {
	User    fish.UserID `json:"user"`
	Shuffle bool        `json:"shuffle"`
}

// StartGameResponse carries the deal. The copy broadcast to the whole room
// has a nil Hand; each seat then receives its own hand privately.
type StartGameResponse struct {
	Hand  *deck.Hand      `json:"hand"`
	Sizes []fish.Opt[int] `json:"handSizes"`
}

type Ask struct {
	Asker fish.Seat `json:"asker"`
	Askee fish.Seat `json:"askee"`
	Card  deck.Card `json:"card"`
}

type Answer struct {
	Askee    fish.Seat `json:"askee"`
	Response bool      `json:"response"`
}

// HandSizes resyncs public hand sizes when clients cannot derive them
type HandSizes struct {
	Sizes []fish.Opt[int] `json:"handSizes"`
}

type InitDeclare struct {
	Declarer fish.Seat  `json:"declarer"`
	Group    deck.Group `json:"group"`
}

// DeclareMove shares an in-progress owner assignment with the declaring
// team. It never changes game state.
type DeclareMove struct {
	Declarer fish.Seat           `json:"declarer"`
	Card     deck.Card           `json:"card"`
	Owner    fish.Opt[fish.Seat] `json:"owner"`
}

type Declare struct {
	Declarer fish.Seat               `json:"declarer"`
	Owners   map[deck.Card]fish.Seat `json:"owners"`
}

// DeclareResponse reveals whether a declaration was correct and the hand
// sizes after the group left play
type DeclareResponse struct {
	Correct bool            `json:"correct"`
	Sizes   []fish.Opt[int] `json:"handSizes"`
}

type Pass struct {
	Passer fish.Seat `json:"passer"`
	Next   fish.Seat `json:"next"`
}

func (AddUser) Kind() Kind           { return KindAddUser }
func (RemoveUser) Kind() Kind        { return KindRemoveUser }
func (SeatAt) Kind() Kind            { return KindSeatAt }
func (UnseatAt) Kind() Kind          { return KindUnseatAt }
func (SetRules) Kind() Kind          { return KindSetRules }
func (StartGame) Kind() Kind         { return KindStartGame }
func (StartGameResponse) Kind() Kind { return KindStartGameResponse }
func (Ask) Kind() Kind               { return KindAsk }
func (Answer) Kind() Kind            { return KindAnswer }
func (HandSizes) Kind() Kind         { return KindHandSizes }
func (InitDeclare) Kind() Kind       { return KindInitDeclare }
func (DeclareMove) Kind() Kind       { return KindDeclareMove }
func (Declare) Kind() Kind           { return KindDeclare }
func (DeclareResponse) Kind() Kind   { return KindDeclareResponse }
func (Pass) Kind() Kind              { return KindPass }

var decoders = map[Kind]func([]byte) (Event, error){
	KindAddUser:           decode[AddUser],
	KindRemoveUser:        decode[RemoveUser],
	KindSeatAt:            decode[SeatAt],
	KindUnseatAt:          decode[UnseatAt],
	KindSetRules:          decode[SetRules],
	KindStartGame:         decode[StartGame],
	KindStartGameResponse: decode[StartGameResponse],
	KindAsk:               decode[Ask],
	KindAnswer:            decode[Answer],
	KindHandSizes:         decode[HandSizes],
	KindInitDeclare:       decode[InitDeclare],
	KindDeclareMove:       decode[DeclareMove],
	KindDeclare:           decode[Declare],
	KindDeclareResponse:   decode[DeclareResponse],
	KindPass:              decode[Pass],
}

func decode[T Event](data []byte) (Event, error) {
	var ev T
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return ev, nil
}
