package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"shopmate/internal/config"
)

type productLine struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Price  int     `json:"price"`
	Rating float64 `json:"rating"`
	Score  float64 `json:"relevance_score"`
}

type cartResponse struct {
	Items []struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Price    int    `json:"price"`
		Quantity int    `json:"quantity"`
	} `json:"items"`
	Total int `json:"total"`
	Count int `json:"count"`
}

func printCart(cart cartResponse) {
	if len(cart.Items) == 0 {
		fmt.Println("Cart is empty.")
		return
	}
	for _, item := range cart.Items {
		fmt.Printf("  %s  %s × %d (₹%d each)\n", colorize(colorCyan, item.ID), item.Name, item.Quantity, item.Price)
	}
	fmt.Printf("  %s ₹%d for %d items\n", colorize(colorBold, "Total:"), cart.Total, cart.Count)
}

// --- chat ---

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Send a message to the shopping assistant",
	Long: `Send a message to the shopping assistant.

Examples:
  shopmate chat "show me headphones under 3000"
  shopmate chat "add the sony headphones to my cart"
  shopmate chat --session alice "what's in my cart?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message := strings.Join(args, " ")
		sessionID, _ := cmd.Flags().GetString("session")
		if newSession, _ := cmd.Flags().GetBool("new-session"); newSession {
			sessionID = uuid.NewString()
			fmt.Fprintf(cmd.ErrOrStderr(), "session: %s\n", sessionID)
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/api/chat", map[string]any{
			"message":    message,
			"session_id": sessionID,
		})
		if err != nil {
			return err
		}

		var reply struct {
			Response string `json:"response"`
			Intent   struct {
				Label string `json:"intent"`
			} `json:"intent"`
			Products        []productLine `json:"products"`
			Recommendations []struct {
				ID     string `json:"id"`
				Name   string `json:"name"`
				Price  int    `json:"price"`
				Reason string `json:"reason"`
			} `json:"recommendations"`
			CartUpdated bool `json:"cart_updated"`
		}
		if err := decodeJSON(resp, &reply); err != nil {
			return err
		}

		fmt.Println(reply.Response)
		for _, p := range reply.Products {
			fmt.Printf("  %s  %s ₹%d (rated %.1f)\n", colorize(colorCyan, p.ID), p.Name, p.Price, p.Rating)
		}
		for _, r := range reply.Recommendations {
			fmt.Printf("  %s  %s ₹%d: %s\n", colorize(colorCyan, r.ID), r.Name, r.Price, r.Reason)
		}
		if reply.CartUpdated {
			printSuccess("Cart updated")
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent conversation turns",
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		q := url.Values{}
		q.Set("session_id", sessionID)
		resp, err := client.get(cmd.Context(), "/api/chat/history?"+q.Encode())
		if err != nil {
			return err
		}

		var turns []struct {
			Role      string `json:"role"`
			Content   string `json:"content"`
			CreatedAt string `json:"created_at"`
		}
		if err := decodeJSON(resp, &turns); err != nil {
			return err
		}

		if len(turns) == 0 {
			fmt.Println("No conversation yet.")
			return nil
		}
		for _, t := range turns {
			fmt.Printf("%s %s\n", colorize(colorBold, t.Role+":"), t.Content)
		}
		return nil
	},
}

func init() {
	chatCmd.Flags().String("session", "", "session identifier")
	chatCmd.Flags().Bool("new-session", false, "start a fresh conversation with a generated session id")
	historyCmd.Flags().String("session", "", "session identifier")
}

// --- cart ---

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Inspect or modify the shopping cart",
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show cart contents",
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		q := url.Values{}
		q.Set("session_id", sessionID)
		resp, err := client.get(cmd.Context(), "/api/cart?"+q.Encode())
		if err != nil {
			return err
		}

		var cart cartResponse
		if err := decodeJSON(resp, &cart); err != nil {
			return err
		}
		printCart(cart)
		return nil
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add a product to the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		quantity, _ := cmd.Flags().GetInt("quantity")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/api/cart/add", map[string]any{
			"session_id": sessionID,
			"product_id": args[0],
			"quantity":   quantity,
		})
		if err != nil {
			return err
		}

		var cart cartResponse
		if err := decodeJSON(resp, &cart); err != nil {
			return err
		}
		printSuccess("Added %s", args[0])
		printCart(cart)
		return nil
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <product-id>",
	Short: "Remove a product from the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/api/cart/remove", map[string]any{
			"session_id": sessionID,
			"product_id": args[0],
		})
		if err != nil {
			return err
		}

		var cart cartResponse
		if err := decodeJSON(resp, &cart); err != nil {
			return err
		}
		printSuccess("Removed %s", args[0])
		printCart(cart)
		return nil
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove everything from the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/api/cart/clear", map[string]any{
			"session_id": sessionID,
		})
		if err != nil {
			return err
		}

		var cart cartResponse
		if err := decodeJSON(resp, &cart); err != nil {
			return err
		}
		printSuccess("Cart cleared")
		return nil
	},
}

func init() {
	cartCmd.PersistentFlags().String("session", "", "session identifier")
	cartAddCmd.Flags().Int("quantity", 1, "quantity to add")
	cartCmd.AddCommand(cartShowCmd)
	cartCmd.AddCommand(cartAddCmd)
	cartCmd.AddCommand(cartRemoveCmd)
	cartCmd.AddCommand(cartClearCmd)
}

// --- catalog ---

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse the product catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products, optionally filtered by category",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		q := url.Values{}
		if category != "" {
			q.Set("category", category)
		}
		path := "/api/products"
		if len(q) > 0 {
			path += "?" + q.Encode()
		}
		resp, err := client.get(cmd.Context(), path)
		if err != nil {
			return err
		}

		var listing struct {
			Products []productLine `json:"products"`
			Count    int           `json:"count"`
		}
		if err := decodeJSON(resp, &listing); err != nil {
			return err
		}

		for _, p := range listing.Products {
			fmt.Printf("  %s  %s ₹%d (rated %.1f)\n", colorize(colorCyan, p.ID), p.Name, p.Price, p.Rating)
		}
		fmt.Printf("%d products\n", listing.Count)
		return nil
	},
}

var catalogSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the catalog by relevance",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		category, _ := cmd.Flags().GetString("category")
		maxPrice, _ := cmd.Flags().GetString("max-price")
		minPrice, _ := cmd.Flags().GetString("min-price")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		q := url.Values{}
		q.Set("q", query)
		if category != "" {
			q.Set("category", category)
		}
		if maxPrice != "" {
			q.Set("max_price", maxPrice)
		}
		if minPrice != "" {
			q.Set("min_price", minPrice)
		}
		resp, err := client.get(cmd.Context(), "/api/products/search?"+q.Encode())
		if err != nil {
			return err
		}

		var listing struct {
			Products []productLine `json:"products"`
		}
		if err := decodeJSON(resp, &listing); err != nil {
			return err
		}

		if len(listing.Products) == 0 {
			fmt.Println("No matching products.")
			return nil
		}
		for _, p := range listing.Products {
			fmt.Printf("  %s  %s ₹%d [score: %.2f]\n", colorize(colorCyan, p.ID), p.Name, p.Price, p.Score)
		}
		return nil
	},
}

func init() {
	catalogListCmd.Flags().String("category", "", "filter by category")
	catalogSearchCmd.Flags().String("category", "", "filter by category")
	catalogSearchCmd.Flags().String("max-price", "", "maximum price")
	catalogSearchCmd.Flags().String("min-price", "", "minimum price")
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogSearchCmd)
}

// --- recommend ---

var recommendCmd = &cobra.Command{
	Use:   "recommend <product-id>",
	Short: "Show complementary products for a catalog item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		q := url.Values{}
		q.Set("product_id", args[0])
		q.Set("session_id", sessionID)
		resp, err := client.get(cmd.Context(), "/api/products/recommendations?"+q.Encode())
		if err != nil {
			return err
		}

		var result struct {
			Recommendations []struct {
				ID     string `json:"id"`
				Name   string `json:"name"`
				Price  int    `json:"price"`
				Reason string `json:"reason"`
			} `json:"recommendations"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if len(result.Recommendations) == 0 {
			fmt.Println("No recommendations for this product.")
			return nil
		}
		for _, r := range result.Recommendations {
			fmt.Printf("  %s  %s ₹%d: %s\n", colorize(colorCyan, r.ID), r.Name, r.Price, r.Reason)
		}
		return nil
	},
}

func init() {
	recommendCmd.Flags().String("session", "", "session identifier")
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Reset a configuration value to its default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.UnsetKey(args[0]); err != nil {
			return err
		}

		printSuccess("Unset %s", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
}
