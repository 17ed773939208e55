package state

func playerJoined(s GameState, p PlayerJoined) GameState {
	for _, existing := range s.Players {
		if existing.ID == p.Player.ID {
			return s
		}
	}
	s.Players = append(append([]RoomPlayer(nil), s.Players...), p.Player)

	if _, seated := s.Player(p.Player.ID); !seated {
		s.GamePlayers = append(append([]PlayerSummary(nil), s.GamePlayers...), PlayerSummary{
			PlayerID:  p.Player.ID,
			Name:      p.Player.Name,
			AvatarSrc: p.Player.Avatar,
			IsHost:    p.Player.IsHost,
		})
	}
	return s
}

func playerLeft(s GameState, p PlayerLeft) GameState {
	players := make([]RoomPlayer, 0, len(s.Players))
	for _, rp := range s.Players {
		if rp.ID != p.PlayerID {
			players = append(players, rp)
		}
	}
	seated := make([]PlayerSummary, 0, len(s.GamePlayers))
	for _, gp := range s.GamePlayers {
		if gp.PlayerID != p.PlayerID {
			seated = append(seated, gp)
		}
	}
	if len(players) == len(s.Players) && len(seated) == len(s.GamePlayers) {
		return s
	}
	s.Players = players
	s.GamePlayers = seated
	if s.IsDisgraced(p.PlayerID) {
		s.PlayersInSocialDisgrace = removeInts(s.PlayersInSocialDisgrace, []int{p.PlayerID})
	}
	return s
}

// turnAdvanced hands the turn over and resets per-turn local state.
func turnAdvanced(s GameState, p TurnAdvanced) GameState {
	s.CurrentTurn = p.PlayerID
	s.DrawAction = DrawAction{}
	s.Selection = Selection{}
	return s
}

// setHand replaces the hand and drops selected ids no longer in it.
func setHand(s GameState, p SetHand) GameState {
	s.Hand = p.Cards
	if len(s.Selection.CardIDs) == 0 {
		return s
	}
	kept := make([]int, 0, len(s.Selection.CardIDs))
	for _, id := range s.Selection.CardIDs {
		if handContains(p.Cards, id) {
			kept = append(kept, id)
		}
	}
	if len(kept) != len(s.Selection.CardIDs) {
		s.Selection = Selection{CardIDs: kept}
	}
	if local, ok := s.Player(s.LocalPlayerID); ok && local.HandSize != len(p.Cards) {
		s.GamePlayers = withHandSize(s.GamePlayers, s.LocalPlayerID, len(p.Cards))
	}
	return s
}

func withHandSize(players []PlayerSummary, playerID, size int) []PlayerSummary {
	out := append([]PlayerSummary(nil), players...)
	for i := range out {
		if out[i].PlayerID == playerID {
			out[i].HandSize = size
		}
	}
	return out
}

func handContains(hand []Card, id int) bool {
	for _, c := range hand {
		if c.ID == id {
			return true
		}
	}
	return false
}

func setDecks(s GameState, p DecksPatch) GameState {
	if p.DeckCount != nil {
		s.Decks.Deck.Count = *p.DeckCount
	}
	if p.Draft != nil {
		s.Decks.Deck.Draft = *p.Draft
	}
	if p.DiscardTop != nil {
		top := *p.DiscardTop
		s.Decks.Discard.Top = &top
	}
	if p.DiscardCount != nil {
		s.Decks.Discard.Count = *p.DiscardCount
		if *p.DiscardCount == 0 {
			s.Decks.Discard.Top = nil
		}
	}
	return s
}

// setSecrets replaces one player's secrets. Names of another player's
// hidden secrets are dropped.
func setSecrets(s GameState, p SetSecrets) GameState {
	incoming := make([]Secret, 0, len(p.Secrets))
	for _, sec := range p.Secrets {
		sec.PlayerID = p.PlayerID
		incoming = append(incoming, sec)
	}
	if p.PlayerID == s.LocalPlayerID {
		s.Secrets = incoming
	}

	all := make([]Secret, 0, len(s.SecretsFromAllPlayers)+len(incoming))
	for _, sec := range s.SecretsFromAllPlayers {
		if sec.PlayerID != p.PlayerID {
			all = append(all, sec)
		}
	}
	all = append(all, maskForeignSecrets(incoming, s.LocalPlayerID)...)
	s.SecretsFromAllPlayers = all
	return s
}

func secretRevealed(s GameState, p SecretRevealed) GameState {
	return updateSecret(s, p.PlayerID, p.SecretID, func(sec *Secret) {
		sec.Hidden = false
		if p.Name != "" {
			sec.Name = p.Name
		}
	})
}

func secretHidden(s GameState, p SecretHidden) GameState {
	local := s.LocalPlayerID
	return updateSecret(s, p.PlayerID, p.SecretID, func(sec *Secret) {
		sec.Hidden = true
		if sec.PlayerID != local {
			sec.Name = ""
		}
	})
}

func updateSecret(s GameState, playerID, secretID int, apply func(*Secret)) GameState {
	if all, ok := patchSecret(s.SecretsFromAllPlayers, playerID, secretID, apply); ok {
		s.SecretsFromAllPlayers = all
	}
	if playerID == s.LocalPlayerID {
		if own, ok := patchSecret(s.Secrets, playerID, secretID, apply); ok {
			s.Secrets = own
		}
	}
	return s
}

func patchSecret(secrets []Secret, playerID, secretID int, apply func(*Secret)) ([]Secret, bool) {
	for i, sec := range secrets {
		if sec.ID != secretID || (sec.PlayerID != 0 && sec.PlayerID != playerID) {
			continue
		}
		out := append([]Secret(nil), secrets...)
		apply(&out[i])
		return out, true
	}
	return secrets, false
}

func maskForeignSecrets(secrets []Secret, localPlayerID int) []Secret {
	out := make([]Secret, len(secrets))
	for i, sec := range secrets {
		if sec.Hidden && sec.PlayerID != localPlayerID {
			sec.Name = ""
		}
		out[i] = sec
	}
	return out
}

// findSecret looks a secret up across every known player.
func findSecret(s GameState, id int) (Secret, bool) {
	for _, sec := range s.SecretsFromAllPlayers {
		if sec.ID == id {
			return sec, true
		}
	}
	for _, sec := range s.Secrets {
		if sec.ID == id {
			return sec, true
		}
	}
	return Secret{}, false
}

func findSet(s GameState, id int) (DetectiveSet, bool) {
	for _, set := range s.Sets {
		if set.ID == id {
			return set, true
		}
	}
	return DetectiveSet{}, false
}

func setSocialDisgrace(s GameState, p SetSocialDisgrace) GameState {
	s.PlayersInSocialDisgrace = dedupe(p.PlayerIDs)
	if s.LocalDisgraced() && len(s.Selection.CardIDs) > 1 {
		s.Selection = Selection{CardIDs: []int{s.Selection.CardIDs[0]}}
	}
	return s
}

func dedupe(ids []int) []int {
	if ids == nil {
		return nil
	}
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !containsInt(out, id) {
			out = append(out, id)
		}
	}
	return out
}
