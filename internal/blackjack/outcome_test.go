package blackjack

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func TestDecide(t *testing.T) {
	cases := []struct {
		name           string
		player, dealer Score
		want           Outcome
	}{
		{"higher total wins", Evaluate([]Card{10, King}), Evaluate([]Card{10, 8}), PlayerWin},
		{"lower total loses", Evaluate([]Card{10, 9}), Evaluate([]Card{8, 10, 3}), PlayerLoss},
		{"equal totals push", Evaluate([]Card{10, 8}), Evaluate([]Card{9, 9}), Push},
		{"dealer bust", Evaluate([]Card{10, 2}), Evaluate([]Card{10, 6, 9}), PlayerWin},
		{"player bust loses to dealer bust", Evaluate([]Card{10, 9, 5}), Evaluate([]Card{10, 6, 9}), PlayerLoss},
		{"natural pushes natural", Evaluate([]Card{Ace, King}), Evaluate([]Card{Ace, Queen}), Push},
		{"natural versus three card twenty one pushes", Score{Total: 21, Blackjack: true}, Score{Total: 21}, Push},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Decide(tc.player, tc.dealer))
		})
	}
}

func TestDecide_BustPrecedence(t *testing.T) {
	for player := 22; player <= 30; player++ {
		for dealer := 2; dealer <= 30; dealer++ {
			p := Score{Total: player, Bust: true}
			d := Score{Total: dealer, Bust: dealer > BlackjackValue}
			require.Equal(t, PlayerLoss, Decide(p, d), "player=%d dealer=%d", player, dealer)
		}
	}
}

func TestPhaseInProgress(t *testing.T) {
	require.True(t, PhaseOpen.InProgress())
	require.True(t, PhasePlayerTurn.InProgress())
	require.True(t, PhaseDealerTurn.InProgress())
	require.False(t, PhaseSettled.InProgress())
	require.False(t, Phase("").InProgress())
}

func TestParamsValidate(t *testing.T) {
	require.NoError(t, DefaultParams().Validate())

	bad := []Params{
		{},
		{RequiredBet: sdkmath.ZeroInt(), WinningPayout: sdkmath.NewInt(200)},
		{RequiredBet: sdkmath.NewInt(100), WinningPayout: sdkmath.NewInt(-1)},
		{RequiredBet: sdkmath.NewInt(300), WinningPayout: sdkmath.NewInt(200)},
	}
	for _, p := range bad {
		require.ErrorIs(t, p.Validate(), ErrInvalidParams)
	}

	huge, ok := sdkmath.NewIntFromString("36893488147419103232")
	require.True(t, ok)
	require.ErrorIs(t, Params{RequiredBet: sdkmath.NewInt(1), WinningPayout: huge}.Validate(), ErrInvalidParams)
}

func TestParamsPayout(t *testing.T) {
	p := DefaultParams()
	stake := sdkmath.NewInt(100)
	require.True(t, p.Payout(PlayerWin, stake).Equal(sdkmath.NewInt(200)))
	require.True(t, p.Payout(Push, stake).Equal(stake))
	require.True(t, p.Payout(PlayerLoss, stake).IsZero())
	require.True(t, p.ReserveFloor().Equal(p.WinningPayout))
}
