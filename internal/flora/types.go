// Package flora is the typed client for the remote ChezFlora REST API.
// Every domain record in this file is owned and persisted by that API;
// the admin panel only mirrors one page of them at a time.
package flora

// ListEnvelope is the paginated list shape returned by every collection
// endpoint: {results, count, next, previous}.
type ListEnvelope[T any] struct {
	Results  []T     `json:"results"`
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
}

// TokenPair is returned by POST /token/.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// UserRef is the embedded short form of a user.
type UserRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// User is an account record from /utilisateurs/.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
	IsBanned bool   `json:"is_banned"`
}

// Address is a delivery address from /adresses/.
type Address struct {
	ID         string  `json:"id"`
	Client     UserRef `json:"client"`
	Name       string  `json:"nom"`
	Street     string  `json:"rue"`
	City       string  `json:"ville"`
	PostalCode string  `json:"code_postal"`
	Country    string  `json:"pays"`
}

// ProductRef is the embedded short form of a product.
type ProductRef struct {
	ID    string `json:"id"`
	Name  string `json:"nom"`
	Price string `json:"prix,omitempty"`
}

// Wishlist groups the products a client flagged, from /wishlist/.
type Wishlist struct {
	ID       string       `json:"id"`
	Client   UserRef      `json:"client"`
	Products []ProductRef `json:"produits"`
}

// CartItem is one line of a cart.
type CartItem struct {
	ID       string     `json:"id"`
	Product  ProductRef `json:"produit"`
	Quantity int        `json:"quantite"`
}

// Cart is a client cart from /paniers/.
type Cart struct {
	ID     string     `json:"id"`
	Client UserRef    `json:"client"`
	Items  []CartItem `json:"items"`
}

// Photo is an uploaded product or showcase image.
type Photo struct {
	ID         string `json:"id"`
	Image      string `json:"image"`
	UploadedAt string `json:"uploaded_at"`
}

// Category groups products, from /categories/.
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"nom"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"date_creation"`
}

// CategoryRef is the embedded short form of a category.
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"nom"`
}

// PromotionRef is the embedded short form of a promotion.
type PromotionRef struct {
	ID   string `json:"id"`
	Name string `json:"nom"`
}

// Product is a catalogue record from /produits/.
type Product struct {
	ID          string         `json:"id"`
	Name        string         `json:"nom"`
	Price       string         `json:"prix"`
	Stock       int            `json:"stock"`
	IsActive    bool           `json:"is_active"`
	Category    *CategoryRef   `json:"categorie"`
	Description string         `json:"description"`
	Promotions  []PromotionRef `json:"promotions"`
	Photos      []Photo        `json:"photos"`
}

// Promotion is a discount campaign from /promotions/. Its target is either
// an explicit product list or a whole category, never both; see the
// catalog package's PromotionTarget for the write-side variant.
type Promotion struct {
	ID        string       `json:"id"`
	Name      string       `json:"nom"`
	Discount  float64      `json:"reduction"`
	StartDate string       `json:"date_debut"`
	EndDate   string       `json:"date_fin"`
	Products  []ProductRef `json:"produits"`
	Category  *CategoryRef `json:"categorie,omitempty"`
}

// Order statuses used by /commandes/.
const (
	OrderPending   = "en_attente"
	OrderInProcess = "en_cours"
	OrderShipped   = "expediee"
	OrderDelivered = "livree"
	OrderCancelled = "annulee"
)

// OrderAddress is the denormalised shipping address on an order.
type OrderAddress struct {
	Name       string `json:"nom"`
	Street     string `json:"rue"`
	City       string `json:"ville"`
	PostalCode string `json:"code_postal"`
	Country    string `json:"pays"`
}

// OrderLine is one product line of an order.
type OrderLine struct {
	ID        string     `json:"id"`
	OrderID   string     `json:"commande,omitempty"`
	Product   ProductRef `json:"produit"`
	Quantity  int        `json:"quantite"`
	UnitPrice string     `json:"prix_unitaire"`
}

// Order is a customer order from /commandes/.
type Order struct {
	ID      string       `json:"id"`
	Client  UserRef      `json:"client"`
	Total   string       `json:"total"`
	Status  string       `json:"statut"`
	Date    string       `json:"date"`
	Address OrderAddress `json:"adresse"`
	Lines   []OrderLine  `json:"lignes"`
}

// CanCancel reports whether the remote API accepts a cancel action for
// this order. Only pending and in-process orders are cancellable.
func (o Order) CanCancel() bool {
	return o.Status == OrderPending || o.Status == OrderInProcess
}

// Workshop is an atelier record from /ateliers/.
type Workshop struct {
	ID              string `json:"id"`
	Name            string `json:"nom"`
	Description     string `json:"description"`
	Date            string `json:"date"`
	Duration        int    `json:"duree"`
	Price           string `json:"prix"`
	Location        string `json:"lieu"`
	Tags            string `json:"tags"`
	TotalPlaces     int    `json:"places_totales"`
	AvailablePlaces int    `json:"places_disponibles"`
	IsActive        bool   `json:"is_active"`
}

// WorkshopParticipant is one registration row of an atelier.
type WorkshopParticipant struct {
	User         UserRef `json:"utilisateur"`
	RegisteredAt string  `json:"date_inscription"`
	Status       string  `json:"statut"`
}

// Service is a floral service from /services/.
type Service struct {
	ID          string   `json:"id"`
	Name        string   `json:"nom"`
	Description string   `json:"description"`
	Photos      []string `json:"photos"`
	IsActive    bool     `json:"is_active"`
	CreatedAt   string   `json:"date_creation"`
}

// Quote is a devis record from /devis/.
type Quote struct {
	ID            string  `json:"id"`
	Client        string  `json:"client"`
	Service       string  `json:"service"`
	Description   string  `json:"description"`
	RequestedAt   string  `json:"date_demande"`
	Status        string  `json:"statut"`
	ProposedPrice *string `json:"prix_propose"`
	UpdatedAt     string  `json:"date_mise_a_jour"`
	IsActive      bool    `json:"is_active"`
}

// Subscription is an abonnement record from /abonnements/.
type Subscription struct {
	ID           string       `json:"id"`
	Client       string       `json:"client"`
	Type         string       `json:"type"`
	Products     []ProductRef `json:"produits"`
	StartDate    string       `json:"date_debut"`
	EndDate      *string      `json:"date_fin"`
	Price        string       `json:"prix"`
	IsActive     bool         `json:"is_active"`
	NextDelivery *string      `json:"prochaine_livraison"`
}

// Article is a blog post from /articles/.
type Article struct {
	ID          string  `json:"id"`
	Title       string  `json:"titre"`
	Content     string  `json:"contenu"`
	Cover       *string `json:"cover"`
	Author      string  `json:"auteur"`
	PublishedAt string  `json:"date_publication"`
	IsActive    bool    `json:"is_active"`
}

// Comment is a blog comment from /commentaires/.
type Comment struct {
	ID       string  `json:"id"`
	Article  string  `json:"article"`
	Client   string  `json:"client"`
	Text     string  `json:"texte"`
	Date     string  `json:"date"`
	Parent   *string `json:"parent"`
	IsActive bool    `json:"is_active"`
}

// Showcase is a realisation record from /realisations/.
type Showcase struct {
	ID          string      `json:"id"`
	Service     CategoryRef `json:"service"`
	Title       string      `json:"titre"`
	Description string      `json:"description"`
	Photos      []Photo     `json:"photos"`
	Date        string      `json:"date"`
	Admin       string      `json:"admin"`
	IsActive    bool        `json:"is_active"`
}

// Payment is a paiement record from /paiements/.
type Payment struct {
	ID              string `json:"id"`
	TransactionType string `json:"type_transaction"`
	Method          string `json:"methode_paiement"`
	Amount          string `json:"montant"`
	Status          string `json:"statut"`
	Date            string `json:"date"`
}

// Setting is a parametre record from /parametres/.
type Setting struct {
	ID          int     `json:"id"`
	Key         string  `json:"cle"`
	Value       string  `json:"valeur"`
	Description *string `json:"description"`
	UpdatedAt   string  `json:"date_mise_a_jour"`
}
