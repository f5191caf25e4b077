package kernel

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presbrey/ircd/wire"
)

func registerClient(t *testing.T, k *Kernel, nick string) (int, *fakeSocket) {
	sock := newFakeSocket(nick + ".test")
	idx := k.AcceptClient(sock)
	require.NotEqual(t, NoIndex, idx)
	k.ClientLine(idx, wire.Message{Verb: "NICK", Params: []string{nick}})
	k.ClientLine(idx, wire.Message{Verb: "USER", Params: []string{nick, "0", "*", nick}})
	require.True(t, waitFor(func() bool {
		for _, l := range sock.Lines() {
			if strings.Contains(l, " 001 ") {
				return true
			}
		}
		return false
	}), "client should receive RPL_WELCOME")
	return idx, sock
}

func TestSingleChannelEcho(t *testing.T) {
	k := newTestKernel()
	stop := runTestKernel(k)
	defer close(stop)

	aliceIdx, _ := registerClient(t, k, "alice")
	_, bobSock := registerClient(t, k, "bob")

	k.ClientLine(aliceIdx, wire.Message{Verb: "JOIN", Params: []string{"#chat"}})
	k.ClientLine(k.nickIndex.Find("bob"), wire.Message{Verb: "JOIN", Params: []string{"#chat"}})

	k.ClientLine(aliceIdx, wire.Message{Verb: "PRIVMSG", Params: []string{"#chat", "hello"}})

	require.True(t, waitFor(func() bool {
		for _, l := range bobSock.Lines() {
			if strings.Contains(l, "PRIVMSG #chat :hello") {
				return true
			}
		}
		return false
	}), "bob should receive alice's PRIVMSG")
}

func TestPrivmsgExcludesSender(t *testing.T) {
	k := newTestKernel()
	stop := runTestKernel(k)
	defer close(stop)

	aliceIdx, aliceSock := registerClient(t, k, "alice")
	k.ClientLine(aliceIdx, wire.Message{Verb: "JOIN", Params: []string{"#chat"}})
	k.ClientLine(aliceIdx, wire.Message{Verb: "PRIVMSG", Params: []string{"#chat", "hi"}})

	waitFor(func() bool { return len(aliceSock.Lines()) > 2 })

	for _, l := range aliceSock.Lines() {
		assert.NotContains(t, l, "PRIVMSG #chat :hi")
	}
}

func TestNickChangeDedupAcrossChannels(t *testing.T) {
	k := newTestKernel()
	stop := runTestKernel(k)
	defer close(stop)

	aliceIdx, _ := registerClient(t, k, "alice")
	_, bobSock := registerClient(t, k, "bob")
	bobIdx := k.nickIndex.Find("bob")

	k.ClientLine(aliceIdx, wire.Message{Verb: "JOIN", Params: []string{"#a,#b"}})
	k.ClientLine(bobIdx, wire.Message{Verb: "JOIN", Params: []string{"#a,#b"}})

	k.ClientLine(aliceIdx, wire.Message{Verb: "NICK", Params: []string{"alice2"}})

	require.True(t, waitFor(func() bool {
		count := 0
		for _, l := range bobSock.Lines() {
			if strings.Contains(l, "NICK :alice2") {
				count++
			}
		}
		return count == 1
	}), "bob should see alice's nick change exactly once despite sharing two channels")
}

func TestChannelNameIsCaseInsensitive(t *testing.T) {
	k := newTestKernel()
	stop := runTestKernel(k)
	defer close(stop)

	aliceIdx, _ := registerClient(t, k, "alice")
	_, bobSock := registerClient(t, k, "bob")
	bobIdx := k.nickIndex.Find("bob")

	k.ClientLine(aliceIdx, wire.Message{Verb: "JOIN", Params: []string{"#Chat"}})
	k.ClientLine(bobIdx, wire.Message{Verb: "JOIN", Params: []string{"#chat"}})

	require.True(t, waitFor(func() bool {
		return k.chanIndex.Find(chanKey("#chat")) != NoIndex &&
			k.chanIndex.Find(chanKey("#Chat")) == k.chanIndex.Find(chanKey("#CHAT"))
	}))

	k.ClientLine(aliceIdx, wire.Message{Verb: "PRIVMSG", Params: []string{"#CHAT", "hi"}})

	require.True(t, waitFor(func() bool {
		for _, l := range bobSock.Lines() {
			if strings.Contains(l, "PRIVMSG #CHAT :hi") {
				return true
			}
		}
		return false
	}), "#Chat, #chat, and #CHAT must all resolve to the same channel")
}

func TestPrivmsgScopedToTargetChannelOnly(t *testing.T) {
	k := newTestKernel()
	stop := runTestKernel(k)
	defer close(stop)

	aliceIdx, _ := registerClient(t, k, "alice")
	_, bobSock := registerClient(t, k, "bob")
	bobIdx := k.nickIndex.Find("bob")
	_, carolSock := registerClient(t, k, "carol")
	carolIdx := k.nickIndex.Find("carol")

	// alice is in both #x and #y; bob only in #x; carol only in #y.
	k.ClientLine(aliceIdx, wire.Message{Verb: "JOIN", Params: []string{"#x,#y"}})
	k.ClientLine(bobIdx, wire.Message{Verb: "JOIN", Params: []string{"#x"}})
	k.ClientLine(carolIdx, wire.Message{Verb: "JOIN", Params: []string{"#y"}})

	k.ClientLine(aliceIdx, wire.Message{Verb: "PRIVMSG", Params: []string{"#x", "hello"}})

	require.True(t, waitFor(func() bool {
		for _, l := range bobSock.Lines() {
			if strings.Contains(l, "PRIVMSG #x :hello") {
				return true
			}
		}
		return false
	}), "bob is in #x and should see alice's message")

	for _, l := range carolSock.Lines() {
		assert.NotContains(t, l, "PRIVMSG #x :hello", "carol shares #y with alice but not #x, and must not see a message sent only to #x")
	}
}

func TestNicknameReservedBeforeRegistrationCompletes(t *testing.T) {
	k := newTestKernel()
	stop := runTestKernel(k)
	defer close(stop)

	firstSock := newFakeSocket("first.test")
	firstIdx := k.AcceptClient(firstSock)
	k.ClientLine(firstIdx, wire.Message{Verb: "NICK", Params: []string{"dup"}})
	// first never sends USER, so it never completes registration.

	secondSock := newFakeSocket("second.test")
	secondIdx := k.AcceptClient(secondSock)
	k.ClientLine(secondIdx, wire.Message{Verb: "NICK", Params: []string{"dup"}})

	require.True(t, waitFor(func() bool {
		for _, l := range secondSock.Lines() {
			if strings.Contains(l, "433") {
				return true
			}
		}
		return false
	}), "a nick claimed by an unregistered client must still be rejected for a second claimant")
}

func TestDuplicateNickRejected(t *testing.T) {
	k := newTestKernel()
	stop := runTestKernel(k)
	defer close(stop)

	registerClient(t, k, "alice")

	sock := newFakeSocket("dup.test")
	idx := k.AcceptClient(sock)
	k.ClientLine(idx, wire.Message{Verb: "NICK", Params: []string{"alice"}})

	require.True(t, waitFor(func() bool {
		for _, l := range sock.Lines() {
			if strings.Contains(l, "433") {
				return true
			}
		}
		return false
	}), "second client should get ERR_NICKNAMEINUSE")
}
