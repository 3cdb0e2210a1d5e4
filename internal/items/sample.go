package items

// Sample is a ready-made list that shows every item shape: numbered lines,
// masked answers, a line without a closing full stop and a paragraph.
const Sample = `1. My stomach felt like it was **full of fluttering butterflies**.
2. As she waited for her turn, she felt **a lump form in her throat**.
3. When Benny learnt that he had won the award, he **broke into a wide smile**.
4. Marilyn's cheeks turned red and her **eyebrows narrowed**
5. Max **giggled and squealed** with excitement upon hearing the good news.
6. Tom's eyes **widened in fright** when he saw the shadow moving towards him.
7. As my grandmother was taking a stroll in the garden, her **hands swayed by her side**.
8. His face was **etched with sorrow** when he learnt that his pet went missing.
9. The children **shouted with glee** in their loudest voice.
10. Father was calm as he spoke in a **slow and steady voice**.
11. Jack's face turned red and blotchy. His mouth opened wide, revealing his tightly clenched teeth. His cheeks were raised till his eyes were squinted. He was shaking and he started stamping his feet on the ground. Then, he growled at his sister in a gravelly voice.`
