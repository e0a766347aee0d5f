// dh.go - RFC 4253 fixed-group Diffie-Hellman groups

// Copyright (c) 2017-2020 the eessh authors
// Licensed under the terms of the MIT license (see LICENSE in this
// distribution)

package kex

import (
	"crypto/rand"
	"math/big"
	"sync"

	"github.com/pkg/errors"
)

// dhGroup is a multiplicative group usable for Diffie-Hellman key
// agreement: generator g, prime modulus p.
type dhGroup struct {
	g, p *big.Int
}

// diffieHellman computes (theirPublic ^ myPrivate) mod p, rejecting a
// peer public value outside the valid range [2, p-2].
func (group *dhGroup) diffieHellman(theirPublic, myPrivate *big.Int) (*big.Int, error) {
	pMinus2 := new(big.Int).Sub(group.p, big.NewInt(2))
	if theirPublic.Cmp(big.NewInt(2)) < 0 || theirPublic.Cmp(pMinus2) > 0 {
		return nil, errors.New("kex: dh public value out of bounds")
	}
	return new(big.Int).Exp(theirPublic, myPrivate, group.p), nil
}

// privateKey draws a random exponent x uniformly in [2, p-2] and
// returns g^x mod p alongside it.
func (group *dhGroup) privateKey() (x, X *big.Int, err error) {
	// rand.Int returns a value in [0, max), so drawing from
	// [0, p-3) and shifting by 2 yields x in [2, p-2].
	max := new(big.Int).Sub(group.p, big.NewInt(3))
	x, err = rand.Int(rand.Reader, max)
	if err != nil {
		return nil, nil, errors.Wrap(err, "generating dh private exponent")
	}
	x.Add(x, big.NewInt(2))
	X = new(big.Int).Exp(group.g, x, group.p)
	return x, X, nil
}

// dhGroup1 is diffie-hellman-group1-sha1, Oakley Group 2 (RFC 2409 section 6.2).
var (
	dhGroup1     *dhGroup
	dhGroup1Once sync.Once
)

func initDHGroup1() {
	p, _ := new(big.Int).SetString("FFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD129024E088A67CC74020BBEA63B139B22514A08798E3404DDEF9519B3CD3A431B302B0A6DF25F14374FE1356D6D51C245E485B576625E7EC6F44C42E9A637ED6B0BFF5CB6F406B7EDEE386BFB5A899FA5AE9F24117C4B1FE649286651ECE65381FFFFFFFFFFFFFFFF", 16)
	dhGroup1 = &dhGroup{g: big.NewInt(2), p: p}
}

// dhGroup14 is diffie-hellman-group14-sha1, Oakley Group 14 (RFC 3526 section 3).
var (
	dhGroup14     *dhGroup
	dhGroup14Once sync.Once
)

func initDHGroup14() {
	p, _ := new(big.Int).SetString("FFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD129024E088A67CC74020BBEA63B139B22514A08798E3404DDEF9519B3CD3A431B302B0A6DF25F14374FE1356D6D51C245E485B576625E7EC6F44C42E9A637ED6B0BFF5CB6F406B7EDEE386BFB5A899FA5AE9F24117C4B1FE649286651ECE45B3DC2007CB8A163BF0598DA48361C55D39A69163FA8FD24CF5F83655D23DCA3AD961C62F356208552BB9ED529077096966D670C354E4ABC9804F1746C08CA18217C32905E462E36CE3BE39E772C180E86039B2783A2EC07A28FB5C55DF06F4C52C9DE2BCBF6955817183995497CEA956AE515D2261898FA051015728E5A8AACAA68FFFFFFFFFFFFFFFF", 16)
	dhGroup14 = &dhGroup{g: big.NewInt(2), p: p}
}

// groupForAlgorithm returns the fixed DH group named by a KEXINIT
// algorithm name.
func groupForAlgorithm(name string) (*dhGroup, error) {
	switch name {
	case "diffie-hellman-group1-sha1":
		dhGroup1Once.Do(initDHGroup1)
		return dhGroup1, nil
	case "diffie-hellman-group14-sha1":
		dhGroup14Once.Do(initDHGroup14)
		return dhGroup14, nil
	default:
		return nil, errors.Wrapf(ErrNoAlgorithmInCommon, "unsupported kex method %q", name)
	}
}
