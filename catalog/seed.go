package catalog

import "os"

// EnsureDocument writes an initial document carrying the dealership contact
// card when the inventory file does not exist yet. An existing file is left
// untouched, whatever its contents.
func EnsureDocument(store *Store, contacts Contacts) error {
	if _, err := os.Stat(store.Path()); err == nil {
		return nil
	}
	return store.Save(Document{Cars: []Car{}, Contacts: contacts})
}
