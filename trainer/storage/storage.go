/*
 *     Copyright 2024 The Dragonfly Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

//go:generate mockgen -destination mocks/storage_mock.go -source storage.go -package mocks

package storage

import (
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// Storage is the interface used for storage.
type Storage interface {
	// ListProduct returns products in the dataset csv file.
	ListProduct() ([]Product, error)

	// OpenProduct opens the dataset csv file for read.
	OpenProduct() (io.ReadCloser, error)

	// CreateProduct writes products to the dataset csv file, replacing its content.
	CreateProduct([]Product) error
}

type storage struct {
	filename string
}

// New returns a new Storage instance over a csv file.
func New(filename string) Storage {
	return &storage{filename: filename}
}

// ListProduct returns products in the dataset csv file.
func (s *storage) ListProduct() ([]Product, error) {
	file, err := s.OpenProduct()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var products []Product
	if err := gocsv.Unmarshal(file, &products); err != nil {
		return nil, err
	}

	return products, nil
}

// OpenProduct opens the dataset csv file for read.
func (s *storage) OpenProduct() (io.ReadCloser, error) {
	file, err := os.Open(s.filename)
	if err != nil {
		return nil, err
	}

	return file, nil
}

// CreateProduct writes products to the dataset csv file, replacing its content.
func (s *storage) CreateProduct(products []Product) error {
	if err := os.MkdirAll(filepath.Dir(s.filename), 0700); err != nil {
		return err
	}

	file, err := os.OpenFile(s.filename, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer file.Close()

	// Write products with the header row.
	if err := gocsv.Marshal(&products, file); err != nil {
		if err := os.Remove(s.filename); err != nil {
			return err
		}

		return err
	}

	return nil
}
