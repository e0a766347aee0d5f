// store.go - default flat-file host-identity store

// Copyright (c) 2017-2020 the eessh authors
// Licensed under the terms of the MIT license (see LICENSE in this
// distribution)

package hostkey

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/csv"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
)

// ErrRejected is returned by a Store's Check when a record exists for
// host:port but its stored digest does not match the offered key.
var ErrRejected = errors.New("hostkey: host key does not match stored record")

// Record is one row of the store: host, port, algorithm and the
// base64-encoded SHA-256 digest of the key blob.
type Record struct {
	Host      string
	Port      int
	Algorithm string
	Digest    string // base64(sha256(K_S))
}

func fingerprint(keyBlob []byte) string {
	sum := sha256.Sum256(keyBlob)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// Store is a CSV-flavored flat-file host-identity store: one record per
// line, space-separated, comment lines start with '#'. A missing file
// is treated as an empty store, not an error. Updates are atomic, via a
// tempfile-then-rename, mirroring xspasswd's password-record rewrite.
type Store struct {
	path string
}

// NewStore opens (without requiring it to exist) the host-key store at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) readAll() ([]Record, error) {
	b, err := ioutil.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "hostkey: reading store")
	}
	r := csv.NewReader(bytes.NewReader(b))
	r.Comma = ' '
	r.Comment = '#'
	r.FieldsPerRecord = 4
	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "hostkey: parsing store")
	}
	recs := make([]Record, 0, len(rows))
	for _, row := range rows {
		port, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, errors.Wrapf(err, "hostkey: bad port in record %v", row)
		}
		recs = append(recs, Record{Host: row[0], Port: port, Algorithm: row[2], Digest: row[3]})
	}
	return recs, nil
}

func (s *Store) writeAll(recs []Record) error {
	outFile, err := ioutil.TempFile(filepath.Dir(s.path), "eessh-hostkey")
	if err != nil {
		return errors.Wrap(err, "hostkey: creating temp file")
	}
	w := csv.NewWriter(outFile)
	w.Comma = ' '
	for _, r := range recs {
		row := []string{r.Host, strconv.Itoa(r.Port), r.Algorithm, r.Digest}
		if err := w.Write(row); err != nil {
			outFile.Close()
			os.Remove(outFile.Name())
			return errors.Wrap(err, "hostkey: writing record")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		outFile.Close()
		os.Remove(outFile.Name())
		return errors.Wrap(err, "hostkey: flushing store")
	}
	if err := outFile.Close(); err != nil {
		return errors.Wrap(err, "hostkey: closing temp file")
	}
	if err := os.Rename(outFile.Name(), s.path); err != nil {
		return errors.Wrap(err, "hostkey: renaming temp file into place")
	}
	return nil
}

// Lookup returns the stored record for host:port, if any.
func (s *Store) Lookup(host string, port int) (*Record, error) {
	recs, err := s.readAll()
	if err != nil {
		return nil, err
	}
	for i := range recs {
		if recs[i].Host == host && recs[i].Port == port {
			return &recs[i], nil
		}
	}
	return nil, nil
}

// Remember appends or replaces the record for host:port.
func (s *Store) Remember(host string, port int, algorithm string, keyBlob []byte) error {
	recs, err := s.readAll()
	if err != nil {
		return err
	}
	digest := fingerprint(keyBlob)
	found := false
	for i := range recs {
		if recs[i].Host == host && recs[i].Port == port {
			recs[i].Algorithm = algorithm
			recs[i].Digest = digest
			found = true
		}
	}
	if !found {
		recs = append(recs, Record{Host: host, Port: port, Algorithm: algorithm, Digest: digest})
	}
	return s.writeAll(recs)
}

// Check implements Checker: it accepts a key that matches a stored
// digest, rejects a key that mismatches one, and otherwise (no record
// at all) remembers the key as trust-on-first-use.
func (s *Store) Check(host string, port int, algorithm string, keyBlob []byte) error {
	rec, err := s.Lookup(host, port)
	if err != nil {
		return err
	}
	digest := fingerprint(keyBlob)
	if rec == nil {
		return s.Remember(host, port, algorithm, keyBlob)
	}
	if rec.Algorithm != algorithm || rec.Digest != digest {
		return errors.Wrapf(ErrRejected, "%s:%d fingerprint changed", host, port)
	}
	return nil
}
